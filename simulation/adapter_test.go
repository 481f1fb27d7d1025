package simulation

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// revertingProvider is a chainclient.Provider double that answers every
// Call with a canned revert payload, the way the v0.6 EntryPoint answers
// simulateValidation.
type revertingProvider struct {
	revert *chainclient.RevertData
	result []byte
	err    error
}

func (p *revertingProvider) Call(ctx context.Context, from, to common.Address, data []byte, overrides map[common.Address]chainclient.CallOverride) ([]byte, *chainclient.RevertData, error) {
	return p.result, p.revert, p.err
}

func (p *revertingProvider) LatestBlock(ctx context.Context) (chainclient.BlockInfo, error) {
	return chainclient.BlockInfo{}, nil
}

func (p *revertingProvider) FeeHistory(ctx context.Context, blockCount uint64, percentiles []float64) (chainclient.FeeHistory, error) {
	return chainclient.FeeHistory{}, nil
}

func (p *revertingProvider) GasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (p *revertingProvider) EstimateFees(ctx context.Context, legacy bool) (chainclient.FeeEstimate, error) {
	return chainclient.FeeEstimate{}, nil
}

func (p *revertingProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func testOpV06(paymasterAndData []byte) *types.UserOperation {
	return &types.UserOperation{V06: &types.UserOperationV06{
		Sender:               common.HexToAddress("0x000000000000000000000000000000000000beef"),
		Nonce:                big.NewInt(7),
		CallData:             []byte{0x01},
		CallGasLimit:         big.NewInt(100_000),
		VerificationGasLimit: big.NewInt(150_000),
		PreVerificationGas:   big.NewInt(50_000),
		MaxFeePerGas:         big.NewInt(2_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		PaymasterAndData:     paymasterAndData,
	}}
}

// packValidationResultRevert builds the revert payload the v0.6 EntryPoint
// produces on successful simulation: the ValidationResult custom error's
// selector followed by its ABI-encoded arguments.
func packValidationResultRevert(t *testing.T, ri v06ReturnInfoRaw) []byte {
	t.Helper()

	vr, ok := v06ABI.Errors["ValidationResult"]
	require.True(t, ok, "v0.6 ABI must declare the ValidationResult error")

	stake := v06StakeInfoRaw{Stake: big.NewInt(0), UnstakeDelaySec: big.NewInt(0)}
	args, err := vr.Inputs.Pack(ri, stake, stake, stake)
	require.NoError(t, err)

	return append(append([]byte{}, vr.ID[:4]...), args...)
}

func packFailedOpRevert(t *testing.T, reason string) []byte {
	t.Helper()

	failedOp, ok := v06ABI.Errors["FailedOp"]
	require.True(t, ok)

	args, err := failedOp.Inputs.Pack(big.NewInt(0), reason)
	require.NoError(t, err)

	return append(append([]byte{}, failedOp.ID[:4]...), args...)
}

func TestSimulateValidationV06HappyPath(t *testing.T) {
	raw := packValidationResultRevert(t, v06ReturnInfoRaw{
		PreOpGas:         big.NewInt(50_000),
		Prefund:          new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
		SigFailed:        false,
		ValidAfter:       big.NewInt(0),
		ValidUntil:       big.NewInt(0),
		PaymasterContext: []byte{},
	})
	provider := &revertingProvider{revert: &chainclient.RevertData{Raw: raw}}

	adapter := NewAdapter(provider, common.Address{}, common.Address{}, nil)
	paymaster := common.HexToAddress("0x000000000000000000000000000000000000aaaa")
	uo := testOpV06(paymaster.Bytes())

	result, err := adapter.SimulateValidation(context.Background(), uo, common.HexToAddress(types.EntryPointV06Address), nil)
	require.NoError(t, err)

	assert.Equal(t, int64(50_000), result.ReturnInfo.PreOpGas.Int64())
	assert.False(t, result.ReturnInfo.SigFailed())
	assert.Equal(t, uint64(0), result.ReturnInfo.ValidAfter)
	assert.Equal(t, (uint64(1)<<48)-1, result.ReturnInfo.ValidUntil, "zero validUntil canonicalizes to never-expires")
	assert.Empty(t, result.StorageMap)

	assert.Equal(t, types.AddressHex(uo.Sender().Hex()), result.SenderInfo.Addr)
	require.NotNil(t, result.PaymasterInfo)
	assert.Equal(t, types.AddressHex(paymaster.Hex()), result.PaymasterInfo.Addr)
	assert.Nil(t, result.FactoryInfo, "no initCode means no factory stake entry")
}

func TestSimulateValidationV06SigFailed(t *testing.T) {
	raw := packValidationResultRevert(t, v06ReturnInfoRaw{
		PreOpGas:         big.NewInt(50_000),
		Prefund:          big.NewInt(1),
		SigFailed:        true,
		ValidAfter:       big.NewInt(0),
		ValidUntil:       big.NewInt(0),
		PaymasterContext: []byte{},
	})
	provider := &revertingProvider{revert: &chainclient.RevertData{Raw: raw}}

	adapter := NewAdapter(provider, common.Address{}, common.Address{}, nil)
	result, err := adapter.SimulateValidation(context.Background(), testOpV06(nil), common.Address{}, nil)
	require.NoError(t, err, "a sig failure is a result, not a simulation error")
	assert.True(t, result.ReturnInfo.AccountSigFailed)
	assert.True(t, result.ReturnInfo.PaymasterSigFailed, "v0.6's single bit mirrors to both sides")
}

func TestSimulateValidationV06FailedOp(t *testing.T) {
	provider := &revertingProvider{revert: &chainclient.RevertData{Raw: packFailedOpRevert(t, "AA25 invalid account nonce")}}

	adapter := NewAdapter(provider, common.Address{}, common.Address{}, nil)
	_, err := adapter.SimulateValidation(context.Background(), testOpV06(nil), common.Address{}, nil)
	require.Error(t, err)

	simErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, SimulateValidation, simErr.Kind)
	assert.Contains(t, simErr.Message, "AA25")
}

func TestSimulateValidationV06NoRevertIsUnexpected(t *testing.T) {
	provider := &revertingProvider{result: []byte{}}

	adapter := NewAdapter(provider, common.Address{}, common.Address{}, NopSink{})
	_, err := adapter.SimulateValidation(context.Background(), testOpV06(nil), common.Address{}, nil)
	require.Error(t, err)

	simErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, Unexpected, simErr.Kind)
}

func TestSimulateValidationV06PlainRevertReason(t *testing.T) {
	args, err := errorStringArgs.Pack("paymaster rejected")
	require.NoError(t, err)
	raw := append([]byte{0x08, 0xc3, 0x79, 0xa0}, args...)
	provider := &revertingProvider{revert: &chainclient.RevertData{Raw: raw}}

	adapter := NewAdapter(provider, common.Address{}, common.Address{}, nil)
	_, err = adapter.SimulateValidation(context.Background(), testOpV06(nil), common.Address{}, nil)
	require.Error(t, err)

	simErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, UserOperationReverted, simErr.Kind)
	assert.Contains(t, simErr.Message, "UserOperation reverted during simulation with reason: paymaster rejected")
}
