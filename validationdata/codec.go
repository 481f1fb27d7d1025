// Package validationdata packs and unpacks the ERC-4337 256-bit
// validationData word and merges an account-side and paymaster-side triple.
// It is a pure, stateless codec with no RPC or chain dependency, built on
// explicit big-endian byte arithmetic over the word's 48/48/160-bit layout.
package validationdata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// maxUint48 is 2^48-1, both the ceiling any validAfter/validUntil value must
// respect and the canonical "never expires" sentinel for validUntil.
const maxUint48 = (uint64(1) << 48) - 1

// ValidationData is the unpacked form of the EntryPoint's 256-bit
// validationData word: an aggregator address plus a time-validity window.
type ValidationData struct {
	Aggregator common.Address
	ValidAfter uint64
	ValidUntil uint64
}

// SigFailed reports whether the aggregator field signals an invalid
// signature, i.e. equals the well-known 0x...01 sentinel address.
func (v ValidationData) SigFailed() bool {
	return v.Aggregator == sigFailedAggregator
}

// HasAggregator reports whether signature checking was delegated to an
// external aggregator contract (a nonzero address other than the
// sig-failed sentinel).
func (v ValidationData) HasAggregator() bool {
	return v.Aggregator != (common.Address{}) && !v.SigFailed()
}

// sigFailedAggregator is the address EntryPoint implementations use to mean
// "signature invalid" when packed as the aggregator field.
var sigFailedAggregator = common.HexToAddress("0x0000000000000000000000000000000000000001")

// Pack lays out a ValidationData as a big-endian 32-byte word: bytes
// [0..6) = validAfter (u48), [6..12) = validUntil (u48), [12..32) =
// aggregator (20 bytes). It rejects validAfter or validUntil values that
// would overflow 48 bits.
func Pack(v ValidationData) ([32]byte, error) {
	var out [32]byte

	if v.ValidAfter > maxUint48 {
		return out, fmt.Errorf("validationdata: validAfter %d overflows uint48", v.ValidAfter)
	}
	if v.ValidUntil > maxUint48 {
		return out, fmt.Errorf("validationdata: validUntil %d overflows uint48", v.ValidUntil)
	}

	putUint48(out[0:6], v.ValidAfter)
	putUint48(out[6:12], v.ValidUntil)
	copy(out[12:32], v.Aggregator.Bytes())

	return out, nil
}

// Unpack reads a 32-byte validationData word back into its three fields. A
// packed validUntil of zero is canonicalized to maxUint48 ("never
// expires").
func Unpack(word [32]byte) ValidationData {
	validAfter := uint48(word[0:6])
	validUntil := uint48(word[6:12])
	if validUntil == 0 {
		validUntil = maxUint48
	}

	return ValidationData{
		Aggregator: common.BytesToAddress(word[12:32]),
		ValidAfter: validAfter,
		ValidUntil: validUntil,
	}
}

// PackBigInt and UnpackBigInt adapt Pack/Unpack to the *big.Int
// representation the EntryPoint ABI actually returns validationData as.
func PackBigInt(v ValidationData) (*big.Int, error) {
	word, err := Pack(v)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word[:]), nil
}

// UnpackBigInt unpacks a validationData value received as a *big.Int (the
// shape the ABI decoder hands back from a uint256 return value).
func UnpackBigInt(v *big.Int) ValidationData {
	var word [32]byte
	v.FillBytes(word[:])
	return Unpack(word)
}

// Merged is the result of combining an account-side and paymaster-side
// ValidationData.
type Merged struct {
	AccountSigFailed   bool
	PaymasterSigFailed bool
	ValidAfter         uint64
	ValidUntil         uint64
}

// Merge combines an account-side and paymaster-side ValidationData: sig
// failure is OR'd per side (not merged together), validAfter takes the max
// (the later of the two windows opening), and validUntil takes the min (the
// earlier of the two windows closing).
func Merge(account, paymaster ValidationData) Merged {
	return Merged{
		AccountSigFailed:   account.Aggregator != (common.Address{}),
		PaymasterSigFailed: paymaster.Aggregator != (common.Address{}),
		ValidAfter:         maxUint64(account.ValidAfter, paymaster.ValidAfter),
		ValidUntil:         minUint64(account.ValidUntil, paymaster.ValidUntil),
	}
}

func putUint48(dst []byte, v uint64) {
	for i := 0; i < 6; i++ {
		dst[5-i] = byte(v >> (8 * i))
	}
}

func uint48(src []byte) uint64 {
	var v uint64
	for i := 0; i < 6; i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
