// Package types holds the wire-level data model shared by every component of
// the validation and pricing pipeline: UserOperation in its two incompatible
// on-chain shapes, the normalized simulation result, and the per-chain
// constant tables the gas and pre-verification-gas estimators consult.
package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EntryPoint addresses for the two canonical deployments this core supports.
const (
	EntryPointV06Address = "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"
	EntryPointV07Address = "0x0000000071727De22E5E9d8BAf0edAc6f37da032"
)

// Version identifies which EntryPoint encoding a UserOperation uses.
type Version int

const (
	V06 Version = iota
	V07
)

func (v Version) String() string {
	if v == V06 {
		return "v0.6"
	}
	return "v0.7"
}

// UserOperationV06 is the pre-EIP-7623-split ERC-4337 envelope: initCode and
// paymasterAndData are single opaque byte blobs.
type UserOperationV06 struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

// HasPaymaster reports whether a paymaster is declared (non-empty
// paymasterAndData).
func (u *UserOperationV06) HasPaymaster() bool {
	return len(u.PaymasterAndData) > 0
}

// UserOperationV07 is the v0.7 envelope, which splits initCode into
// factory/factoryData and paymasterAndData into its four constituent fields.
type UserOperationV07 struct {
	Sender               common.Address
	Nonce                *big.Int
	Factory              *common.Address
	FactoryData          []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int

	Paymaster                     *common.Address
	PaymasterVerificationGasLimit *big.Int
	PaymasterPostOpGasLimit       *big.Int
	PaymasterData                 []byte

	Signature []byte
}

// HasPaymaster reports whether a paymaster is declared.
func (u *UserOperationV07) HasPaymaster() bool {
	return u.Paymaster != nil && *u.Paymaster != (common.Address{})
}

// HasFactory reports whether the operation deploys its sender account.
func (u *UserOperationV07) HasFactory() bool {
	return u.Factory != nil && *u.Factory != (common.Address{})
}

// UserOperation is the tagged variant used at every public boundary of this
// core: a UserOperation is v0.6 XOR v0.7, never both. Version detection is
// on shape (which pointer is set), not a flag.
type UserOperation struct {
	V06 *UserOperationV06
	V07 *UserOperationV07
}

// Version reports which encoding this operation carries.
func (u UserOperation) Version() Version {
	if u.V07 != nil {
		return V07
	}
	return V06
}

// Sender returns the smart account address regardless of version.
func (u UserOperation) Sender() common.Address {
	if u.V07 != nil {
		return u.V07.Sender
	}
	return u.V06.Sender
}

// CallGasLimit returns the declared call gas limit regardless of version.
func (u UserOperation) CallGasLimit() *big.Int {
	if u.V07 != nil {
		return u.V07.CallGasLimit
	}
	return u.V06.CallGasLimit
}

// VerificationGasLimit returns the declared verification gas limit.
func (u UserOperation) VerificationGasLimit() *big.Int {
	if u.V07 != nil {
		return u.V07.VerificationGasLimit
	}
	return u.V06.VerificationGasLimit
}

// PreVerificationGas returns the declared bundler-overhead gas.
func (u UserOperation) PreVerificationGas() *big.Int {
	if u.V07 != nil {
		return u.V07.PreVerificationGas
	}
	return u.V06.PreVerificationGas
}

// MaxFeePerGas returns the declared max fee per gas.
func (u UserOperation) MaxFeePerGas() *big.Int {
	if u.V07 != nil {
		return u.V07.MaxFeePerGas
	}
	return u.V06.MaxFeePerGas
}

// MaxPriorityFeePerGas returns the declared max priority fee per gas.
func (u UserOperation) MaxPriorityFeePerGas() *big.Int {
	if u.V07 != nil {
		return u.V07.MaxPriorityFeePerGas
	}
	return u.V06.MaxPriorityFeePerGas
}

// CallDataLength returns the byte length of the calldata, used by the
// pre-verification gas estimator's per-byte cost term.
func (u UserOperation) CallDataLength() int {
	if u.V07 != nil {
		return len(u.V07.CallData)
	}
	return len(u.V06.CallData)
}

// CallData returns the raw calldata bytes regardless of version, used for
// per-byte zero/non-zero gas costing.
func (u UserOperation) CallData() []byte {
	if u.V07 != nil {
		return u.V07.CallData
	}
	return u.V06.CallData
}

// Nonce returns the declared nonce regardless of version. A zero nonce
// signals a counterfactual deployment to the Arbitrum L1-fee probe.
func (u UserOperation) Nonce() *big.Int {
	if u.V07 != nil {
		return u.V07.Nonce
	}
	return u.V06.Nonce
}

// HasPaymaster reports whether a paymaster is declared, regardless of
// version. Operations with a paymaster carry a 3x verification-gas prefund
// multiplier.
func (u UserOperation) HasPaymaster() bool {
	if u.V07 != nil {
		return u.V07.HasPaymaster()
	}
	return u.V06.HasPaymaster()
}

// Validate checks that exactly one of V06/V07 is set.
func (u UserOperation) Validate() error {
	if (u.V06 == nil) == (u.V07 == nil) {
		return fmt.Errorf("useroperation: exactly one of V06 or V07 must be set")
	}
	return nil
}
