package gasprice

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

func defaultClockMs() int64 { return time.Now().UnixMilli() }

// Sink is the telemetry collaborator the manager reports queue depth and
// fetched prices to.
type Sink interface {
	ObserveQueueDepth(component string, depth int)
	ObserveGasPrice(maxFeePerGas, maxPriorityFeePerGas *big.Int)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) ObserveQueueDepth(component string, depth int)               {}
func (NopSink) ObserveGasPrice(maxFeePerGas, maxPriorityFeePerGas *big.Int) {}

// Error reports a rejected client-submitted price.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// clockMs returns the current wall-clock time in milliseconds; tests
// substitute a fixed source to drive the rolling queue deterministically.
type clockMs func() int64

// Manager produces fee suggestions and validates submitted prices. It is
// stateless except for its two rolling-minimum queues, each guarded by its
// own internal lock. No lock spans both queues, so a concurrent reader can
// see a new observation in one queue before it is recorded in the other.
type Manager struct {
	provider    chainclient.Provider
	chainID     int64
	windowSize  int
	maxFeeQueue *rollingQueue
	tipQueue    *rollingQueue
	sink        Sink
	now         clockMs
}

// NewManager constructs a Manager for one chain. windowSize is the rolling
// window capacity in seconds, defaulting to 10 when zero.
func NewManager(provider chainclient.Provider, chainID int64, windowSize int, sink Sink) *Manager {
	if windowSize <= 0 {
		windowSize = 10
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Manager{
		provider:    provider,
		chainID:     chainID,
		windowSize:  windowSize,
		maxFeeQueue: newRollingQueue(windowSize),
		tipQueue:    newRollingQueue(windowSize),
		sink:        sink,
		now:         defaultClockMs,
	}
}

// GetGasPrice runs the full pipeline: chain-specific source selection,
// bump, floor, then a recorded observation in both rolling queues.
func (m *Manager) GetGasPrice(ctx context.Context) (chainclient.FeeEstimate, error) {
	profile := types.ChainProfileFor(m.chainID)

	estimate, err := m.fetchBySource(ctx, profile)
	if err != nil {
		return chainclient.FeeEstimate{}, err
	}

	bumped := bump(estimate, profile)
	floored := floor(bumped, profile)

	tsMs := m.now()
	m.maxFeeQueue.Insert(floored.MaxFeePerGas, tsMs)
	m.tipQueue.Insert(floored.MaxPriorityFeePerGas, tsMs)

	m.sink.ObserveGasPrice(floored.MaxFeePerGas, floored.MaxPriorityFeePerGas)
	m.sink.ObserveQueueDepth("maxFeePerGas", m.maxFeeQueue.Depth())
	m.sink.ObserveQueueDepth("maxPriorityFeePerGas", m.tipQueue.Depth())

	return floored, nil
}

// fetchBySource selects among the Polygon gas station, legacy, and
// EIP-1559 fee sources. Plain conditionals rather than a source interface:
// there are only three variants and no caller ever needs to add a fourth
// without touching this file anyway.
func (m *Manager) fetchBySource(ctx context.Context, profile types.ChainProfile) (chainclient.FeeEstimate, error) {
	if profile.GasPriceFamily == types.GasPriceFamilyPolygonGasStation {
		estimate, err := fetchPolygonGasStation(profile.ChainID)
		if err == nil {
			return estimate, nil
		}
		log.Printf("gasprice: polygon gas station fetch failed for chain %d, falling back to EIP-1559 estimate: %v", profile.ChainID, err)
	}

	if profile.NoEIP1559Support || profile.GasPriceFamily == types.GasPriceFamilyLegacy {
		return m.legacyEstimate(ctx)
	}

	return m.eip1559Estimate(ctx)
}

func (m *Manager) legacyEstimate(ctx context.Context) (chainclient.FeeEstimate, error) {
	estimate, err := m.provider.EstimateFees(ctx, true)
	if err != nil || estimate.GasPrice == nil {
		price, gpErr := m.provider.GasPrice(ctx)
		if gpErr != nil {
			return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: legacy estimate failed: %w", gpErr)
		}
		return chainclient.FeeEstimate{MaxFeePerGas: price, MaxPriorityFeePerGas: price}, nil
	}
	return chainclient.FeeEstimate{MaxFeePerGas: estimate.GasPrice, MaxPriorityFeePerGas: estimate.GasPrice}, nil
}

// eip1559Estimate fills in any field the provider's fee estimate leaves nil
// using fee history and the next-base-fee projection.
func (m *Manager) eip1559Estimate(ctx context.Context) (chainclient.FeeEstimate, error) {
	estimate, err := m.provider.EstimateFees(ctx, false)
	if err != nil {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: eip1559 estimate failed: %w", err)
	}

	if estimate.MaxPriorityFeePerGas == nil {
		tip, err := m.fallbackPriorityFee(ctx, estimate.MaxFeePerGas)
		if err != nil {
			return chainclient.FeeEstimate{}, err
		}
		estimate.MaxPriorityFeePerGas = tip
	}

	if estimate.MaxFeePerGas == nil {
		block, err := m.provider.LatestBlock(ctx)
		if err != nil {
			return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: failed to fetch latest block for base fee projection: %w", err)
		}
		base := nextBaseFee(block.BaseFeePerGas, block.GasUsed, block.GasLimit)
		estimate.MaxFeePerGas = new(big.Int).Add(base, estimate.MaxPriorityFeePerGas)
	}

	if estimate.MaxPriorityFeePerGas.Sign() == 0 {
		estimate.MaxPriorityFeePerGas = new(big.Int).Div(estimate.MaxFeePerGas, big.NewInt(200))
	}

	return estimate, nil
}

// fallbackPriorityFee derives a priority fee from fee history: the
// 20th-percentile average reward over the last 10 blocks, capped at
// maxFeePerGas when known.
func (m *Manager) fallbackPriorityFee(ctx context.Context, maxFeePerGas *big.Int) (*big.Int, error) {
	history, err := m.provider.FeeHistory(ctx, 10, []float64{20})
	if err != nil {
		return nil, fmt.Errorf("gasprice: fee history fetch failed: %w", err)
	}

	if len(history.Reward) == 0 {
		return big.NewInt(0), nil
	}

	sum := big.NewInt(0)
	count := 0
	for _, row := range history.Reward {
		if len(row) == 0 || row[0] == nil {
			continue
		}
		sum.Add(sum, row[0])
		count++
	}
	if count == 0 {
		return big.NewInt(0), nil
	}
	avg := sum.Div(sum, big.NewInt(int64(count)))

	if maxFeePerGas != nil && avg.Cmp(maxFeePerGas) > 0 {
		return new(big.Int).Set(maxFeePerGas), nil
	}
	return avg, nil
}

// bump raises the priority fee to the chain minimum, raises the max fee to
// at least that, then scales both by the chain's bump percentage; Celo
// chains additionally collapse both fees to their max afterward.
func bump(estimate chainclient.FeeEstimate, profile types.ChainProfile) chainclient.FeeEstimate {
	tip := estimate.MaxPriorityFeePerGas
	maxFee := estimate.MaxFeePerGas

	if profile.MaxPriorityMinimum != nil && tip.Cmp(profile.MaxPriorityMinimum) < 0 {
		tip = new(big.Int).Set(profile.MaxPriorityMinimum)
	}
	if maxFee.Cmp(tip) < 0 {
		maxFee = new(big.Int).Set(tip)
	}

	tip = scalePercent(tip, profile.BumpPercent)
	maxFee = scalePercent(maxFee, profile.BumpPercent)

	if profile.CollapseToMax {
		max := tip
		if maxFee.Cmp(max) > 0 {
			max = maxFee
		}
		tip, maxFee = max, max
	}

	return chainclient.FeeEstimate{MaxFeePerGas: maxFee, MaxPriorityFeePerGas: tip}
}

func scalePercent(v *big.Int, percent int64) *big.Int {
	if percent == 0 {
		percent = 100
	}
	return new(big.Int).Div(new(big.Int).Mul(v, big.NewInt(percent)), big.NewInt(100))
}

// floor raises each fee to its chain-specific floor.
func floor(estimate chainclient.FeeEstimate, profile types.ChainProfile) chainclient.FeeEstimate {
	maxFee := estimate.MaxFeePerGas
	tip := estimate.MaxPriorityFeePerGas

	if profile.MaxFeeFloor != nil && maxFee.Cmp(profile.MaxFeeFloor) < 0 {
		maxFee = new(big.Int).Set(profile.MaxFeeFloor)
	}
	if profile.MaxPriorityFeeFloor != nil && tip.Cmp(profile.MaxPriorityFeeFloor) < 0 {
		tip = new(big.Int).Set(profile.MaxPriorityFeeFloor)
	}

	return chainclient.FeeEstimate{MaxFeePerGas: maxFee, MaxPriorityFeePerGas: tip}
}

// ValidateGasPrice requires the submitted fees to each be at least the
// current rolling minimum, priming the queues via GetGasPrice if they're
// cold.
func (m *Manager) ValidateGasPrice(ctx context.Context, submitted chainclient.FeeEstimate) error {
	minMaxFee, ok := m.maxFeeQueue.Min()
	if !ok {
		if _, err := m.GetGasPrice(ctx); err != nil {
			return fmt.Errorf("gasprice: failed to prime rolling minimum: %w", err)
		}
		minMaxFee, _ = m.maxFeeQueue.Min()
	}
	minTip, _ := m.tipQueue.Min()

	if submitted.MaxFeePerGas.Cmp(minMaxFee) < 0 {
		return &Error{Message: fmt.Sprintf("maxFeePerGas too low: minimum: %s, got: %s", minMaxFee, submitted.MaxFeePerGas)}
	}
	if submitted.MaxPriorityFeePerGas.Cmp(minTip) < 0 {
		return &Error{Message: fmt.Sprintf("maxPriorityFeePerGas too low: minimum: %s, got: %s", minTip, submitted.MaxPriorityFeePerGas)}
	}
	return nil
}
