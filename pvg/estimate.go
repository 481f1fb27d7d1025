// Package pvg computes the minimum preVerificationGas a UserOperation must
// declare: a pure function of the operation, the chain it targets, and an
// optional on-chain probe for L2 chains whose fee model includes an L1
// data-availability component.
package pvg

import (
	"context"
	"math/big"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// Fixed overhead and per-byte calldata costs, matching the EntryPoint's own
// accounting for the bundler-side overhead a UserOperation must cover:
// signature verification, the UserOperationEvent log, and the transaction's
// own intrinsic cost share across a batch.
const (
	fixedOverhead  = 21000
	perZeroByte    = 4
	perNonZeroByte = 16
	// perUserOpWordOverhead approximates the amortized batch bookkeeping
	// cost (array indexing, event emission) EntryPoint.sol charges per UO
	// beyond the shared intrinsic 21000.
	perUserOpWordOverhead = 18300
)

// Estimator computes the minimum preVerificationGas. A nil provider
// degrades every chain profile to the fixed+per-byte formula.
type Estimator struct {
	provider chainclient.Provider
}

// NewEstimator constructs an Estimator. provider may be nil.
func NewEstimator(provider chainclient.Provider) *Estimator {
	return &Estimator{provider: provider}
}

// Estimate computes the minimum preVerificationGas for uo on chainID,
// combining the fixed+per-byte formula with the chain profile's L1
// surcharge strategy when a probe is available.
func (e *Estimator) Estimate(ctx context.Context, uo *types.UserOperation, chainID int64) (*big.Int, error) {
	static := staticCost(uo)

	profile := types.ChainProfileFor(chainID)
	if profile.L1Surcharge == types.L1SurchargeNone || e.provider == nil {
		return static, nil
	}

	switch profile.L1Surcharge {
	case types.L1SurchargeArbitrum:
		return arbitrumSurcharge(ctx, e.provider, uo, static)
	case types.L1SurchargeOptimism:
		return optimismSurcharge(ctx, e.provider, uo, static)
	default:
		return static, nil
	}
}

// staticCost is the chain-agnostic fixed+per-byte formula: intrinsic cost
// plus a per-UO amortized overhead plus calldata zero/non-zero byte costs.
func staticCost(uo *types.UserOperation) *big.Int {
	cost := int64(fixedOverhead + perUserOpWordOverhead)
	for _, b := range uo.CallData() {
		if b == 0 {
			cost += perZeroByte
		} else {
			cost += perNonZeroByte
		}
	}
	return big.NewInt(cost)
}
