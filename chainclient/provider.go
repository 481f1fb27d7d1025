// Package chainclient is the narrow transport facade every other component
// calls through: eth_call with state overrides, eth_getBlockByNumber,
// eth_feeHistory, eth_gasPrice, and EIP-1559 fee suggestions. It has no
// eth_estimateGas operation and does not ABI-decode revert data: a revert
// comes back as its raw payload, which callers decode. It owns no
// validation or pricing policy; decision logic stays in the packages that
// call it.
package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallOverride is a per-account state override applied to a simulation
// call, e.g. the synthetic ETH-balance bump the validator adds when
// balanceOverrideEnabled is set.
type CallOverride struct {
	Balance *big.Int
	Code    []byte
}

// BlockInfo is the subset of eth_getBlockByNumber this core consults.
type BlockInfo struct {
	Number        uint64
	BaseFeePerGas *big.Int
	GasUsed       uint64
	GasLimit      uint64
}

// FeeHistory is the subset of eth_feeHistory this core consults: one
// reward row per returned block, holding one entry per requested
// percentile.
type FeeHistory struct {
	BaseFeePerGas []*big.Int
	Reward        [][]*big.Int
}

// FeeEstimate is the result of estimate_fees: either the EIP-1559 pair or
// the legacy gasPrice, depending on which fields are non-nil.
type FeeEstimate struct {
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Provider is the narrow interface every other component depends on. It is
// satisfied by *Client (an ethclient.Client-backed implementation) and by
// test doubles.
type Provider interface {
	// Call performs an eth_call from from against to with data, applying
	// overrides if non-empty. *Client omits a zero from only when it sends
	// overrides; without overrides it calls ethclient's CallContract, which
	// sends the zero address as from. A successful call returns
	// (result, nil, nil). A revert returns (nil, revert, nil) with the raw
	// revert payload. Any other transport/decode failure is returned as err.
	Call(ctx context.Context, from, to common.Address, data []byte, overrides map[common.Address]CallOverride) ([]byte, *RevertData, error)

	LatestBlock(ctx context.Context) (BlockInfo, error)
	FeeHistory(ctx context.Context, blockCount uint64, percentiles []float64) (FeeHistory, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateFees(ctx context.Context, legacy bool) (FeeEstimate, error)
	ChainID(ctx context.Context) (*big.Int, error)
}
