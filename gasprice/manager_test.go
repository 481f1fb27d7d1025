package gasprice

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// fakeProvider is a minimal chainclient.Provider test double returning
// canned responses.
type fakeProvider struct {
	estimate    chainclient.FeeEstimate
	estimateErr error
	block       chainclient.BlockInfo
	history     chainclient.FeeHistory
	gasPrice    *big.Int
}

func (f *fakeProvider) Call(ctx context.Context, from, to common.Address, data []byte, overrides map[common.Address]chainclient.CallOverride) ([]byte, *chainclient.RevertData, error) {
	return nil, nil, nil
}

func (f *fakeProvider) LatestBlock(ctx context.Context) (chainclient.BlockInfo, error) {
	return f.block, nil
}

func (f *fakeProvider) FeeHistory(ctx context.Context, blockCount uint64, percentiles []float64) (chainclient.FeeHistory, error) {
	return f.history, nil
}

func (f *fakeProvider) GasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeProvider) EstimateFees(ctx context.Context, legacy bool) (chainclient.FeeEstimate, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func TestManagerGetGasPriceFillsMissingFields(t *testing.T) {
	provider := &fakeProvider{
		estimate: chainclient.FeeEstimate{MaxPriorityFeePerGas: big.NewInt(1_000_000_000)},
		block: chainclient.BlockInfo{
			BaseFeePerGas: big.NewInt(10_000_000_000),
			GasUsed:       15_000_000,
			GasLimit:      30_000_000,
		},
	}

	m := NewManager(provider, 1, 10, nil)
	tick := int64(0)
	m.now = func() int64 { tick++; return tick }

	estimate, err := m.GetGasPrice(context.Background())
	if err != nil {
		t.Fatalf("GetGasPrice() error = %v", err)
	}
	if estimate.MaxFeePerGas == nil || estimate.MaxPriorityFeePerGas == nil {
		t.Fatalf("GetGasPrice() returned nil fields: %+v", estimate)
	}
	if estimate.MaxFeePerGas.Cmp(estimate.MaxPriorityFeePerGas) < 0 {
		t.Errorf("maxFeePerGas %s should be >= maxPriorityFeePerGas %s", estimate.MaxFeePerGas, estimate.MaxPriorityFeePerGas)
	}
}

func TestManagerValidateGasPriceRejectsBelowMinimum(t *testing.T) {
	m := NewManager(&fakeProvider{}, 1, 10, nil)
	m.maxFeeQueue.Insert(big.NewInt(8), 0)
	m.tipQueue.Insert(big.NewInt(1), 0)

	err := m.ValidateGasPrice(context.Background(), chainclient.FeeEstimate{
		MaxFeePerGas:         big.NewInt(7),
		MaxPriorityFeePerGas: big.NewInt(1),
	})
	if err == nil {
		t.Fatal("ValidateGasPrice() expected error for submission below rolling minimum")
	}
}

func TestManagerValidateGasPriceAcceptsAtMinimum(t *testing.T) {
	m := NewManager(&fakeProvider{}, 1, 10, nil)
	m.maxFeeQueue.Insert(big.NewInt(8), 0)
	m.tipQueue.Insert(big.NewInt(1), 0)

	err := m.ValidateGasPrice(context.Background(), chainclient.FeeEstimate{
		MaxFeePerGas:         big.NewInt(8),
		MaxPriorityFeePerGas: big.NewInt(1),
	})
	if err != nil {
		t.Errorf("ValidateGasPrice() unexpected error = %v", err)
	}
}

func TestBumpScalesAndAppliesMinimum(t *testing.T) {
	profile := types.ChainProfileFor(137)
	estimate := chainclient.FeeEstimate{
		MaxFeePerGas:         big.NewInt(100),
		MaxPriorityFeePerGas: big.NewInt(0),
	}
	got := bump(estimate, profile)
	want := new(big.Int).Div(new(big.Int).Mul(profile.MaxPriorityMinimum, big.NewInt(profile.BumpPercent)), big.NewInt(100))
	if got.MaxPriorityFeePerGas.Cmp(want) != 0 {
		t.Errorf("bump() should raise zero tip to the chain minimum and scale it, got %s, want %s", got.MaxPriorityFeePerGas, want)
	}
	if got.MaxFeePerGas.Cmp(want) != 0 {
		t.Errorf("bump() should raise maxFeePerGas to the raised tip and scale it, got %s, want %s", got.MaxFeePerGas, want)
	}
}
