package pvg

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aa-bundler/bundler-core/chainclient"
	"github.com/aa-bundler/bundler-core/types"
)

// optimismGasPriceOracleAddress is the predeploy address of the OP-stack
// GasPriceOracle, which exposes getL1Fee(bytes) to price a transaction's L1
// calldata-posting fee.
var optimismGasPriceOracleAddress = common.HexToAddress("0x420000000000000000000000000000000000000F")

const gasPriceOracleABI = `[
  {
    "type": "function",
    "name": "getL1Fee",
    "stateMutability": "view",
    "inputs": [
      {"name": "_data", "type": "bytes"}
    ],
    "outputs": [
      {"name": "", "type": "uint256"}
    ]
  }
]`

var gasPriceOracle = mustParseABI(gasPriceOracleABI)

// optimismSurcharge synthesizes the raw transaction bytes a bundler would
// submit for this operation's calldata and prices its L1 fee, then converts
// that wei amount into an L2 gas-unit buffer by dividing by the cheaper of
// maxFeePerGas and (tip + baseFee).
func optimismSurcharge(ctx context.Context, provider chainclient.Provider, uo *types.UserOperation, static *big.Int) (*big.Int, error) {
	raw := synthesizeRawTx(uo)

	data, err := gasPriceOracle.Pack("getL1Fee", raw)
	if err != nil {
		return nil, err
	}

	result, revert, err := provider.Call(ctx, common.Address{}, optimismGasPriceOracleAddress, data, nil)
	if err != nil {
		return nil, err
	}
	if revert != nil {
		return static, nil
	}

	values, err := gasPriceOracle.Methods["getL1Fee"].Outputs.Unpack(result)
	if err != nil || len(values) != 1 {
		return static, nil
	}
	l1Fee, ok := values[0].(*big.Int)
	if !ok || l1Fee.Sign() == 0 {
		return static, nil
	}

	l2Price := uo.MaxFeePerGas()
	block, err := provider.LatestBlock(ctx)
	if err == nil && block.BaseFeePerGas != nil {
		l2Priority := new(big.Int).Add(uo.MaxPriorityFeePerGas(), block.BaseFeePerGas)
		if l2Priority.Cmp(l2Price) < 0 {
			l2Price = l2Priority
		}
	}
	if l2Price == nil || l2Price.Sign() == 0 {
		return static, nil
	}

	buffer := new(big.Int).Div(l1Fee, l2Price)
	return new(big.Int).Add(static, buffer), nil
}

// synthesizeRawTx builds a minimal calldata-length proxy for the handleOps
// transaction this UserOperation would ride in: the L1 fee oracle only
// cares about byte length and zero/non-zero composition, so the sender and
// raw calldata are a faithful enough stand-in without a real ABI-encoded
// handleOps call.
func synthesizeRawTx(uo *types.UserOperation) []byte {
	sender := uo.Sender()
	return append(append([]byte{}, sender.Bytes()...), uo.CallData()...)
}
