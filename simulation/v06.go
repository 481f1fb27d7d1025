package simulation

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// simulateValidationV06 drives the v0.6 EntryPoint: simulateValidation is
// expected to revert with ValidationResult/ValidationResultWithAggregation
// on success, FailedOp on failure. A plain Error(string) revert is surfaced
// as UserOperationReverted; any other shape is an
// UnexpectedSimulationResponse reported through sink.
func simulateValidationV06(ctx context.Context, provider chainclient.Provider, from, entrypoint common.Address, uo *types.UserOperationV06, overrides map[common.Address]chainclient.CallOverride, sink Sink) (types.ValidationResult, error) {
	data, err := v06ABI.Pack("simulateValidation", packUserOpV06(uo))
	if err != nil {
		return types.ValidationResult{}, &Error{Kind: Decode, Message: fmt.Sprintf("failed to encode simulateValidation call: %v", err)}
	}

	_, revert, err := provider.Call(ctx, from, entrypoint, data, overrides)
	if err != nil {
		return types.ValidationResult{}, &Error{Kind: Transport, Message: err.Error()}
	}
	if revert == nil {
		sink.ReportUnexpected("simulateValidation did not revert", nil)
		return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: simulateValidation returned normally instead of reverting"}
	}

	return decodeV06Revert(revert.Raw, sink)
}

func decodeV06Revert(raw []byte, sink Sink) (types.ValidationResult, error) {
	if len(raw) < 4 {
		sink.ReportUnexpected("revert payload too short to carry a selector", raw)
		return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: revert payload too short"}
	}

	if failedOp, ok := v06ABI.Errors["FailedOp"]; ok && matchesSelector(raw, failedOp.ID[:4]) {
		values, err := failedOp.Inputs.Unpack(raw[4:])
		if err != nil {
			sink.ReportUnexpected("failed to decode FailedOp", raw)
			return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed FailedOp"}
		}
		reason, _ := values[1].(string)
		return types.ValidationResult{}, &Error{Kind: SimulateValidation, Message: reason}
	}

	if vr, ok := v06ABI.Errors["ValidationResult"]; ok && matchesSelector(raw, vr.ID[:4]) {
		values, err := vr.Inputs.Unpack(raw[4:])
		if err != nil {
			sink.ReportUnexpected("failed to decode ValidationResult", raw)
			return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed ValidationResult"}
		}
		return normalizeV06Result(values, nil), nil
	}

	if vra, ok := v06ABI.Errors["ValidationResultWithAggregation"]; ok && matchesSelector(raw, vra.ID[:4]) {
		values, err := vra.Inputs.Unpack(raw[4:])
		if err != nil {
			sink.ReportUnexpected("failed to decode ValidationResultWithAggregation", raw)
			return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed ValidationResultWithAggregation"}
		}
		return normalizeV06Result(values[:4], values[4]), nil
	}

	// Secondary walk: this revert doesn't parse against the known EntryPoint
	// error schema at all; it may still carry a plain Error(string) reason
	// the way a vanilla "require" revert would.
	if reason, ok := extractStringRevertReason(raw); ok {
		return types.ValidationResult{}, &Error{Kind: UserOperationReverted, Message: fmt.Sprintf("UserOperation reverted during simulation with reason: %s", reason)}
	}

	sink.ReportUnexpected("revert selector did not match any known EntryPoint error", raw)
	return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: unrecognized revert payload"}
}

func matchesSelector(raw []byte, selector []byte) bool {
	if len(raw) < 4 || len(selector) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if raw[i] != selector[i] {
			return false
		}
	}
	return true
}

var errorStringArgs = abi.Arguments{{Type: mustNewType("string")}}

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic("simulation: invalid abi type " + t + ": " + err.Error())
	}
	return typ
}

// extractStringRevertReason recognizes the standard Solidity
// Error(string) revert selector (0x08c379a0) that a plain "require" or
// "revert(reason)" produces, distinct from the EntryPoint's own custom
// errors.
func extractStringRevertReason(raw []byte) (string, bool) {
	errorStringSelector := []byte{0x08, 0xc3, 0x79, 0xa0}
	if !matchesSelector(raw, errorStringSelector) {
		return "", false
	}
	values, err := errorStringArgs.Unpack(raw[4:])
	if err != nil || len(values) == 0 {
		return "", false
	}
	reason, ok := values[0].(string)
	return reason, ok
}

// v06ReturnInfoRaw/v06StakeInfoRaw/v06AggregatorStakeInfoRaw are the
// field-for-field Go shapes of the ABI tuples, used with abi.ConvertType to
// recover them from the interface{} values abi.Arguments.Unpack returns —
// the same pattern abigen-generated bindings use rather than asserting
// against the package's internal reflect-generated anonymous struct type.
type v06ReturnInfoRaw struct {
	PreOpGas         *big.Int
	Prefund          *big.Int
	SigFailed        bool
	ValidAfter       *big.Int
	ValidUntil       *big.Int
	PaymasterContext []byte
}

type v06StakeInfoRaw struct {
	Stake           *big.Int
	UnstakeDelaySec *big.Int
}

type v06AggregatorStakeInfoRaw struct {
	Aggregator common.Address
	StakeInfo  v06StakeInfoRaw
}

func normalizeV06Result(returnInfoAndStakes []interface{}, aggregatorInfo interface{}) types.ValidationResult {
	ri := decodeV06ReturnInfo(returnInfoAndStakes[0])
	senderInfo := decodeStakeInfo(returnInfoAndStakes[1])
	factoryInfo := decodeStakeInfo(returnInfoAndStakes[2])
	paymasterInfo := decodeStakeInfo(returnInfoAndStakes[3])

	result := types.ValidationResult{
		ReturnInfo:    ri,
		SenderInfo:    senderInfo,
		FactoryInfo:   &factoryInfo,
		PaymasterInfo: &paymasterInfo,
		StorageMap:    map[string]interface{}{},
	}

	if aggregatorInfo != nil {
		agg := decodeAggregatorStakeInfo(aggregatorInfo)
		result.AggregatorInfo = &agg
	}

	return result
}

func decodeV06ReturnInfo(v interface{}) types.ReturnInfo {
	raw := abi.ConvertType(v, new(v06ReturnInfoRaw)).(*v06ReturnInfoRaw)

	validUntil := raw.ValidUntil.Uint64()
	if validUntil == 0 {
		validUntil = (uint64(1) << 48) - 1
	}

	return types.ReturnInfo{
		PreOpGas:           raw.PreOpGas,
		Prefund:            raw.Prefund,
		AccountSigFailed:   raw.SigFailed,
		PaymasterSigFailed: raw.SigFailed,
		ValidAfter:         raw.ValidAfter.Uint64(),
		ValidUntil:         validUntil,
		PaymasterContext:   raw.PaymasterContext,
	}
}

func decodeStakeInfo(v interface{}) types.StakeInfo {
	raw := abi.ConvertType(v, new(v06StakeInfoRaw)).(*v06StakeInfoRaw)
	return types.StakeInfo{Stake: raw.Stake, UnstakeDelaySec: raw.UnstakeDelaySec}
}

func decodeAggregatorStakeInfo(v interface{}) types.AggregatorStakeInfo {
	raw := abi.ConvertType(v, new(v06AggregatorStakeInfoRaw)).(*v06AggregatorStakeInfoRaw)
	return types.AggregatorStakeInfo{
		Aggregator: types.AddressHex(raw.Aggregator.Hex()),
		StakeInfo: types.StakeInfo{
			Stake:           raw.StakeInfo.Stake,
			UnstakeDelaySec: raw.StakeInfo.UnstakeDelaySec,
		},
	}
}

// packUserOpV06 builds the tuple argument simulateValidation expects, as a
// Go struct suitable for abi.Pack.
func packUserOpV06(uo *types.UserOperationV06) interface{} {
	return struct {
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
	}{
		Sender:               uo.Sender,
		Nonce:                uo.Nonce,
		InitCode:             uo.InitCode,
		CallData:             uo.CallData,
		CallGasLimit:         uo.CallGasLimit,
		VerificationGasLimit: uo.VerificationGasLimit,
		PreVerificationGas:   uo.PreVerificationGas,
		MaxFeePerGas:         uo.MaxFeePerGas,
		MaxPriorityFeePerGas: uo.MaxPriorityFeePerGas,
		PaymasterAndData:     uo.PaymasterAndData,
		Signature:            uo.Signature,
	}
}
