package simulation

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// Adapter is a version-aware driver over the chain client that normalizes
// both EntryPoint generations' simulation responses into the shared
// types.ValidationResult/types.ExecutionResult shapes.
type Adapter struct {
	provider        chainclient.Provider
	simulationsAddr common.Address
	utilityWallet   common.Address
	sink            Sink
}

// NewAdapter constructs an Adapter. simulationsAddr is the v0.7
// EntryPointSimulations deployment; it is unused on the v0.6 path.
// utilityWallet is the neutral caller every simulation eth_call originates
// from; it is passed to the provider as is, zero or not. A nil sink falls
// back to NopSink.
func NewAdapter(provider chainclient.Provider, simulationsAddr, utilityWallet common.Address, sink Sink) *Adapter {
	if sink == nil {
		sink = NopSink{}
	}
	return &Adapter{provider: provider, simulationsAddr: simulationsAddr, utilityWallet: utilityWallet, sink: sink}
}

// SimulateValidation dispatches to the v0.6 or v0.7 path per the
// UserOperation's shape, calling entrypoint directly for v0.6 or the
// adapter's configured EntryPointSimulations contract for v0.7.
// overrides carries any caller-requested state overrides, e.g. the
// validator's synthetic sender-balance bump.
func (a *Adapter) SimulateValidation(ctx context.Context, uo *types.UserOperation, entrypoint common.Address, overrides map[common.Address]chainclient.CallOverride) (types.ValidationResult, error) {
	if err := uo.Validate(); err != nil {
		return types.ValidationResult{}, &Error{Kind: Decode, Message: err.Error()}
	}

	var result types.ValidationResult
	var err error
	if uo.V07 != nil {
		result, err = simulateValidationV07(ctx, a.provider, a.utilityWallet, a.simulationsAddr, uo.V07, overrides, a.sink)
	} else {
		result, err = simulateValidationV06(ctx, a.provider, a.utilityWallet, entrypoint, uo.V06, overrides, a.sink)
	}
	if err != nil {
		return types.ValidationResult{}, err
	}

	result.SenderInfo.Addr = types.AddressHex(uo.Sender().Hex())
	if result.FactoryInfo != nil {
		if addr, ok := factoryAddress(uo); ok {
			result.FactoryInfo.Addr = types.AddressHex(addr.Hex())
		} else {
			result.FactoryInfo = nil
		}
	}
	if result.PaymasterInfo != nil {
		if addr, ok := paymasterAddress(uo); ok {
			result.PaymasterInfo.Addr = types.AddressHex(addr.Hex())
		} else {
			result.PaymasterInfo = nil
		}
	}

	return result, nil
}

func factoryAddress(uo *types.UserOperation) (common.Address, bool) {
	if uo.V07 != nil {
		if uo.V07.HasFactory() {
			return *uo.V07.Factory, true
		}
		return common.Address{}, false
	}
	if len(uo.V06.InitCode) >= 20 {
		return common.BytesToAddress(uo.V06.InitCode[:20]), true
	}
	return common.Address{}, false
}

func paymasterAddress(uo *types.UserOperation) (common.Address, bool) {
	if uo.V07 != nil {
		if uo.V07.HasPaymaster() {
			return *uo.V07.Paymaster, true
		}
		return common.Address{}, false
	}
	if len(uo.V06.PaymasterAndData) >= 20 {
		return common.BytesToAddress(uo.V06.PaymasterAndData[:20]), true
	}
	return common.Address{}, false
}
