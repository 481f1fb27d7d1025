package types

import "math/big"

// StakeInfo describes an EntryPoint-tracked stake for one party to a
// UserOperation (sender, factory, paymaster, or aggregator).
type StakeInfo struct {
	Addr            AddressHex
	Stake           *big.Int
	UnstakeDelaySec *big.Int
}

// AddressHex is a 0x-prefixed, checksum-agnostic address string. StakeInfo
// uses a string rather than common.Address because the address may be the
// zero value to mean "not applicable" without conflating it with the actual
// zero address.
type AddressHex string

// ReturnInfo is the EntryPoint's ReturnInfo struct, normalized across the
// v0.6 revert-encoded and v0.7 structured-return paths.
type ReturnInfo struct {
	PreOpGas *big.Int
	Prefund  *big.Int

	// AccountSigFailed and PaymasterSigFailed are the merged booleans from
	// the validationdata codec. For v0.6, which has a single SigFailed bit,
	// both fields mirror that bit.
	AccountSigFailed   bool
	PaymasterSigFailed bool

	ValidAfter  uint64
	ValidUntil  uint64

	PaymasterContext []byte
}

// SigFailed reports whether either side's signature check failed.
func (r ReturnInfo) SigFailed() bool {
	return r.AccountSigFailed || r.PaymasterSigFailed
}

// ValidationResult is the normalized result of simulating a UserOperation
// against either EntryPoint version. StorageMap is always empty in this
// core; it exists only so the out-of-scope tracing/"safe" validator layer
// has somewhere to put its findings without changing this shape.
type ValidationResult struct {
	ReturnInfo ReturnInfo

	SenderInfo      StakeInfo
	FactoryInfo     *StakeInfo
	PaymasterInfo   *StakeInfo
	AggregatorInfo  *AggregatorStakeInfo

	StorageMap map[string]interface{}
}

// AggregatorStakeInfo pairs a signature aggregator's address with its stake.
type AggregatorStakeInfo struct {
	Aggregator AddressHex
	StakeInfo  StakeInfo
}

// ExecutionResult is the normalized result of simulateHandleOp.
type ExecutionResult struct {
	PreOpGas      *big.Int
	Paid          *big.Int
	ValidAfter    uint64
	ValidUntil    uint64
	TargetSuccess bool
	TargetResult  []byte
}
