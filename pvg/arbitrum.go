package pvg

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// arbitrumNodeInterfaceAddress is Arbitrum's NodeInterface precompile,
// which exposes gasEstimateL1Component to price the L1 calldata-posting
// component of a transaction separately from its L2 execution cost.
var arbitrumNodeInterfaceAddress = common.BigToAddress(big.NewInt(0xC8))

// nodeInterfaceABI carries the one NodeInterface method this estimator
// calls; parsing the JSON fragment derives the selector.
const nodeInterfaceABI = `[
  {
    "type": "function",
    "name": "gasEstimateL1Component",
    "stateMutability": "payable",
    "inputs": [
      {"name": "to", "type": "address"},
      {"name": "contractCreation", "type": "bool"},
      {"name": "data", "type": "bytes"}
    ],
    "outputs": [
      {"name": "gasEstimateForL1", "type": "uint64"},
      {"name": "baseFee", "type": "uint256"},
      {"name": "l1BaseFeeEstimate", "type": "uint256"}
    ]
  }
]`

var nodeInterface = mustParseABI(nodeInterfaceABI)

// entrypointForL1Estimate is a neutral placeholder address used only to
// shape the gasEstimateL1Component call; NodeInterface does not validate it
// against a real EntryPoint deployment.
var entrypointForL1Estimate = common.Address{}

// arbitrumSurcharge prices the L1 component by calling the NodeInterface
// precompile with the operation's own calldata (not an encoded handleOps
// call), treating a zero nonce as a counterfactual (CREATE) deployment.
func arbitrumSurcharge(ctx context.Context, provider chainclient.Provider, uo *types.UserOperation, static *big.Int) (*big.Int, error) {
	create := uo.Nonce() != nil && uo.Nonce().Sign() == 0

	data, err := nodeInterface.Pack("gasEstimateL1Component", entrypointForL1Estimate, create, uo.CallData())
	if err != nil {
		return nil, err
	}

	result, revert, err := provider.Call(ctx, common.Address{}, arbitrumNodeInterfaceAddress, data, nil)
	if err != nil {
		return nil, err
	}
	if revert != nil {
		// NodeInterface calls are simulation-only pseudo-reverts on some
		// clients; fall back to the static estimate rather than fail
		// preVerificationGas checking outright.
		return static, nil
	}

	values, err := nodeInterface.Methods["gasEstimateL1Component"].Outputs.Unpack(result)
	if err != nil || len(values) != 3 {
		return static, nil
	}
	gasEstimateForL1, ok := values[0].(uint64)
	if !ok {
		return static, nil
	}

	return new(big.Int).Add(static, new(big.Int).SetUint64(gasEstimateForL1)), nil
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("pvg: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
