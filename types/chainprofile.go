package types

import "math/big"

// L1SurchargeKind selects which L2 data-availability surcharge strategy the
// pre-verification gas estimator applies on top of the fixed+per-byte
// formula.
type L1SurchargeKind int

const (
	// L1SurchargeNone means no L2 lives on this chain profile; the fixed
	// plus per-byte formula is the whole answer.
	L1SurchargeNone L1SurchargeKind = iota
	// L1SurchargeArbitrum probes the Arbitrum NodeInterface precompile's
	// gasEstimateL1Component.
	L1SurchargeArbitrum
	// L1SurchargeOptimism probes the OP-stack GasPriceOracle precompile's
	// getL1Fee.
	L1SurchargeOptimism
)

// GasPriceFamily distinguishes the fee-estimation strategy the gas price
// manager follows for a chain: the default EIP-1559 path, a legacy
// (pre-1559) path, or the Polygon-family gas-station path.
type GasPriceFamily int

const (
	GasPriceFamilyEIP1559 GasPriceFamily = iota
	GasPriceFamilyLegacy
	GasPriceFamilyPolygonGasStation
)

// ChainProfile is the process-wide constant bundle for one chain id: the
// "global-ish chain tables" design note expressed as one lookup structure
// rather than scattered per-call conditionals.
type ChainProfile struct {
	ChainID int64
	Name    string

	GasPriceFamily GasPriceFamily

	// BumpPercent scales both fee components before the floors are applied,
	// e.g. 111 means 111%.
	BumpPercent int64

	// MaxFeeFloor/MaxPriorityFeeFloor are the per-chain minimums applied
	// last (e.g. DFK: 5 gwei each).
	MaxFeeFloor         *big.Int
	MaxPriorityFeeFloor *big.Int

	// MaxPriorityMinimum is the per-chain minimum priority fee raised to
	// before bumping (Polygon: 31 gwei, Mumbai: 1 gwei).
	MaxPriorityMinimum *big.Int

	// CollapseToMax is the Celo-family rule: after bumping, both fees
	// collapse to their max.
	CollapseToMax bool

	// NoEIP1559Support forces the legacy gas-price estimation path
	// regardless of GasPriceFamily.
	NoEIP1559Support bool

	L1Surcharge L1SurchargeKind

	AlchemyNetwork string
	PimlicoNetwork string
}

var gwei = func(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000)) }

// chainProfiles is the process-wide table. Chains absent from this map get
// the neutral profile ChainProfileFor builds: bump 100%, zero floors, no L1
// surcharge, EIP-1559.
var chainProfiles = map[int64]ChainProfile{
	1:        {ChainID: 1, Name: "ethereum-mainnet", BumpPercent: 111, AlchemyNetwork: "eth-mainnet", PimlicoNetwork: "ethereum"},
	11155111: {ChainID: 11155111, Name: "sepolia", BumpPercent: 120, AlchemyNetwork: "eth-sepolia", PimlicoNetwork: "sepolia"},
	137: {
		ChainID: 137, Name: "polygon", GasPriceFamily: GasPriceFamilyPolygonGasStation,
		BumpPercent: 100, MaxPriorityMinimum: gwei(31), AlchemyNetwork: "polygon-mainnet", PimlicoNetwork: "polygon",
	},
	80001: {
		ChainID: 80001, Name: "polygon-mumbai", GasPriceFamily: GasPriceFamilyPolygonGasStation,
		BumpPercent: 100, MaxPriorityMinimum: gwei(1), AlchemyNetwork: "polygon-mumbai", PimlicoNetwork: "mumbai",
	},
	10:     {ChainID: 10, Name: "optimism", BumpPercent: 111, L1Surcharge: L1SurchargeOptimism, AlchemyNetwork: "opt-mainnet", PimlicoNetwork: "optimism"},
	420:    {ChainID: 420, Name: "optimism-goerli", BumpPercent: 111, L1Surcharge: L1SurchargeOptimism, AlchemyNetwork: "opt-goerli", PimlicoNetwork: "optimism-goerli"},
	42161:  {ChainID: 42161, Name: "arbitrum-one", BumpPercent: 111, L1Surcharge: L1SurchargeArbitrum, AlchemyNetwork: "arb-mainnet", PimlicoNetwork: "arbitrum"},
	421613: {ChainID: 421613, Name: "arbitrum-goerli", BumpPercent: 111, L1Surcharge: L1SurchargeArbitrum, AlchemyNetwork: "arb-goerli", PimlicoNetwork: "arbitrum-goerli"},
	8453:   {ChainID: 8453, Name: "base-mainnet", BumpPercent: 111, L1Surcharge: L1SurchargeOptimism, AlchemyNetwork: "base-mainnet", PimlicoNetwork: "base"},
	84532:  {ChainID: 84532, Name: "base-sepolia", BumpPercent: 111, L1Surcharge: L1SurchargeOptimism, AlchemyNetwork: "base-sepolia", PimlicoNetwork: "base-sepolia"},
	534352: {ChainID: 534352, Name: "scroll", BumpPercent: 111},
	43114:  {ChainID: 43114, Name: "avalanche", BumpPercent: 111},
	42220:  {ChainID: 42220, Name: "celo-mainnet", BumpPercent: 150, CollapseToMax: true},
	44787:  {ChainID: 44787, Name: "celo-alfajores", BumpPercent: 150, CollapseToMax: true},
	53935:  {ChainID: 53935, Name: "dfk-chain", BumpPercent: 100, MaxFeeFloor: gwei(5), MaxPriorityFeeFloor: gwei(5)},
}

// ChainProfileFor returns the constant bundle for chainID, defaulting to a
// neutral EIP-1559 profile (100% bump, no floors, no surcharge) when the
// chain is not in the table.
func ChainProfileFor(chainID int64) ChainProfile {
	if p, ok := chainProfiles[chainID]; ok {
		return p
	}
	return ChainProfile{ChainID: chainID, Name: "unknown", BumpPercent: 100}
}

// IsSupportedChain reports whether chainID has a dedicated profile entry.
func IsSupportedChain(chainID int64) bool {
	_, ok := chainProfiles[chainID]
	return ok
}
