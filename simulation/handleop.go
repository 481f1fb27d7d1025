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

// SimulateHandleOp drives simulateHandleOp: like simulateValidation, both
// EntryPoint generations signal the result by reverting with
// ExecutionResult so that the simulated execution's state changes never
// land. A FailedOp or a plain Error(string) revert is surfaced as
// UserOperationReverted; any other revert payload is reported to the sink
// and surfaced as Unexpected.
func (a *Adapter) SimulateHandleOp(ctx context.Context, uo *types.UserOperation, entrypoint, target common.Address, targetData []byte, overrides map[common.Address]chainclient.CallOverride) (types.ExecutionResult, error) {
	if err := uo.Validate(); err != nil {
		return types.ExecutionResult{}, &Error{Kind: Decode, Message: err.Error()}
	}

	var data []byte
	var err error
	var callTo common.Address
	if uo.V07 != nil {
		callTo = a.simulationsAddr
		data, err = v07ABI.Pack("simulateHandleOp", packUserOpV07(uo.V07), target, targetData)
	} else {
		callTo = entrypoint
		data, err = v06ABI.Pack("simulateHandleOp", packUserOpV06(uo.V06), target, targetData)
	}
	if err != nil {
		return types.ExecutionResult{}, &Error{Kind: Decode, Message: fmt.Sprintf("failed to encode simulateHandleOp call: %v", err)}
	}

	_, revert, err := a.provider.Call(ctx, a.utilityWallet, callTo, data, overrides)
	if err != nil {
		return types.ExecutionResult{}, &Error{Kind: Transport, Message: err.Error()}
	}
	if revert == nil {
		a.sink.ReportUnexpected("simulateHandleOp did not revert", nil)
		return types.ExecutionResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: simulateHandleOp returned normally instead of reverting"}
	}

	theABI := v06ABI
	if uo.V07 != nil {
		theABI = v07ABI
	}
	return decodeExecutionResult(theABI, revert.Raw, a.sink)
}

func decodeExecutionResult(theABI abi.ABI, raw []byte, sink Sink) (types.ExecutionResult, error) {
	if failedOp, ok := theABI.Errors["FailedOp"]; ok && matchesSelector(raw, failedOp.ID[:4]) {
		values, err := failedOp.Inputs.Unpack(raw[4:])
		if err != nil {
			sink.ReportUnexpected("failed to decode FailedOp from simulateHandleOp", raw)
			return types.ExecutionResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed FailedOp"}
		}
		reason, _ := values[1].(string)
		return types.ExecutionResult{}, &Error{Kind: UserOperationReverted, Message: fmt.Sprintf("UserOperation reverted during simulation with reason: %s", reason)}
	}

	if er, ok := theABI.Errors["ExecutionResult"]; ok && matchesSelector(raw, er.ID[:4]) {
		values, err := er.Inputs.Unpack(raw[4:])
		if err != nil || len(values) != 6 {
			sink.ReportUnexpected("failed to decode ExecutionResult", raw)
			return types.ExecutionResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: malformed ExecutionResult"}
		}

		validUntil := values[3].(*big.Int).Uint64()
		if validUntil == 0 {
			validUntil = (uint64(1) << 48) - 1
		}

		return types.ExecutionResult{
			PreOpGas:      values[0].(*big.Int),
			Paid:          values[1].(*big.Int),
			ValidAfter:    values[2].(*big.Int).Uint64(),
			ValidUntil:    validUntil,
			TargetSuccess: values[4].(bool),
			TargetResult:  values[5].([]byte),
		}, nil
	}

	if reason, ok := extractStringRevertReason(raw); ok {
		return types.ExecutionResult{}, &Error{Kind: UserOperationReverted, Message: fmt.Sprintf("UserOperation reverted during simulation with reason: %s", reason)}
	}

	sink.ReportUnexpected("revert selector did not match ExecutionResult or FailedOp", raw)
	return types.ExecutionResult{}, &Error{Kind: Unexpected, Message: "UnexpectedSimulationResponse: unrecognized revert payload"}
}
