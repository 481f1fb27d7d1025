package simulation

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
	"github.com/aa-bundler/bundler-core/validationdata"
)

// simulateValidationV07 drives the v0.7 companion EntryPointSimulations
// contract, whose simulateValidation returns its result as structured data
// on success rather than reverting.
func simulateValidationV07(ctx context.Context, provider chainclient.Provider, from, simulationsAddr common.Address, uo *types.UserOperationV07, overrides map[common.Address]chainclient.CallOverride, sink Sink) (types.ValidationResult, error) {
	data, err := v07ABI.Pack("simulateValidation", packUserOpV07(uo))
	if err != nil {
		return types.ValidationResult{}, &Error{Kind: Decode, Message: fmt.Sprintf("failed to encode simulateValidation call: %v", err)}
	}

	result, revert, err := provider.Call(ctx, from, simulationsAddr, data, overrides)
	if err != nil {
		return types.ValidationResult{}, &Error{Kind: Transport, Message: err.Error()}
	}

	if revert != nil {
		return types.ValidationResult{}, decodeV07Revert(revert.Raw, sink)
	}

	values, err := v07ABI.Methods["simulateValidation"].Outputs.Unpack(result)
	if err != nil {
		sink.ReportUnexpected("failed to decode simulateValidation return struct", result)
		return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed simulateValidation return"}
	}
	if len(values) != 1 {
		sink.ReportUnexpected("simulateValidation returned unexpected arity", result)
		return types.ValidationResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed simulateValidation return"}
	}

	return normalizeV07Result(values[0]), nil
}

func decodeV07Revert(raw []byte, sink Sink) error {
	if failedOp, ok := v07ABI.Errors["FailedOp"]; ok && matchesSelector(raw, failedOp.ID[:4]) {
		values, err := failedOp.Inputs.Unpack(raw[4:])
		if err != nil {
			sink.ReportUnexpected("failed to decode FailedOp", raw)
			return &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed FailedOp"}
		}
		reason, _ := values[1].(string)
		return &Error{Kind: SimulateValidation, Message: reason}
	}

	if reason, ok := extractStringRevertReason(raw); ok {
		return &Error{Kind: UserOperationReverted, Message: fmt.Sprintf("UserOperation reverted during simulation with reason: %s", reason)}
	}

	sink.ReportUnexpected("revert selector did not match any known EntryPointSimulations error", raw)
	return &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: unrecognized revert payload"}
}

// v07ReturnInfoRaw mirrors the ABI tuple's accountValidationData/
// paymasterValidationData u256 fields, which carry packed validation words
// rather than a plain sigFailed bool; the validationdata codec unpacks and
// merges them.
type v07ReturnInfoRaw struct {
	PreOpGas                *big.Int
	Prefund                 *big.Int
	AccountValidationData   *big.Int
	PaymasterValidationData *big.Int
	PaymasterContext        []byte
}

func normalizeV07Result(v interface{}) types.ValidationResult {
	raw := abi.ConvertType(v, new(struct {
		ReturnInfo     v07ReturnInfoRaw
		SenderInfo     v06StakeInfoRaw
		FactoryInfo    v06StakeInfoRaw
		PaymasterInfo  v06StakeInfoRaw
		AggregatorInfo v06AggregatorStakeInfoRaw
	})).(*struct {
		ReturnInfo     v07ReturnInfoRaw
		SenderInfo     v06StakeInfoRaw
		FactoryInfo    v06StakeInfoRaw
		PaymasterInfo  v06StakeInfoRaw
		AggregatorInfo v06AggregatorStakeInfoRaw
	})

	accountVD := validationdata.UnpackBigInt(raw.ReturnInfo.AccountValidationData)
	paymasterVD := validationdata.UnpackBigInt(raw.ReturnInfo.PaymasterValidationData)
	merged := validationdata.Merge(accountVD, paymasterVD)

	result := types.ValidationResult{
		ReturnInfo: types.ReturnInfo{
			PreOpGas:           raw.ReturnInfo.PreOpGas,
			Prefund:            raw.ReturnInfo.Prefund,
			AccountSigFailed:   merged.AccountSigFailed,
			PaymasterSigFailed: merged.PaymasterSigFailed,
			ValidAfter:         merged.ValidAfter,
			ValidUntil:         merged.ValidUntil,
			PaymasterContext:   raw.ReturnInfo.PaymasterContext,
		},
		SenderInfo:    types.StakeInfo{Stake: raw.SenderInfo.Stake, UnstakeDelaySec: raw.SenderInfo.UnstakeDelaySec},
		FactoryInfo:   &types.StakeInfo{Stake: raw.FactoryInfo.Stake, UnstakeDelaySec: raw.FactoryInfo.UnstakeDelaySec},
		PaymasterInfo: &types.StakeInfo{Stake: raw.PaymasterInfo.Stake, UnstakeDelaySec: raw.PaymasterInfo.UnstakeDelaySec},
		StorageMap:    map[string]interface{}{},
	}

	if accountVD.HasAggregator() {
		result.AggregatorInfo = &types.AggregatorStakeInfo{
			Aggregator: types.AddressHex(raw.AggregatorInfo.Aggregator.Hex()),
			StakeInfo: types.StakeInfo{
				Stake:           raw.AggregatorInfo.StakeInfo.Stake,
				UnstakeDelaySec: raw.AggregatorInfo.StakeInfo.UnstakeDelaySec,
			},
		}
	}

	return result
}

// packUserOpV07 builds the PackedUserOperation tuple EntryPointSimulations
// expects from the unpacked v0.7 fields, using packedop.go's bytes32
// helpers for accountGasLimits/gasFees and paymasterAndData concatenation.
func packUserOpV07(uo *types.UserOperationV07) interface{} {
	initCode := uo.FactoryData
	if uo.HasFactory() {
		initCode = append(append([]byte{}, uo.Factory.Bytes()...), uo.FactoryData...)
	} else {
		initCode = nil
	}

	var paymasterAddr *[20]byte
	if uo.HasPaymaster() {
		var a [20]byte
		copy(a[:], uo.Paymaster.Bytes())
		paymasterAddr = &a
	}

	return struct {
		Sender             common.Address
		Nonce              *big.Int
		InitCode           []byte
		CallData           []byte
		AccountGasLimits   [32]byte
		PreVerificationGas *big.Int
		GasFees            [32]byte
		PaymasterAndData   []byte
		Signature          []byte
	}{
		Sender:             uo.Sender,
		Nonce:              uo.Nonce,
		InitCode:           initCode,
		CallData:           uo.CallData,
		AccountGasLimits:   packAccountGasLimits(uo.VerificationGasLimit, uo.CallGasLimit),
		PreVerificationGas: uo.PreVerificationGas,
		GasFees:            packGasFees(uo.MaxPriorityFeePerGas, uo.MaxFeePerGas),
		PaymasterAndData:   packPaymasterAndData(paymasterAddr, uo.PaymasterVerificationGasLimit, uo.PaymasterPostOpGasLimit, uo.PaymasterData),
		Signature:          uo.Signature,
	}
}
