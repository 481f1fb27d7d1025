package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Client is the ethclient-backed Provider implementation: ethclient.Dial at
// construction, plain CallContract/FeeHistory/SuggestGasPrice calls with no
// retry or circuit-breaking logic of its own.
type Client struct {
	eth     *ethclient.Client
	rpc     *gethrpc.Client
	chainID *big.Int
}

// Dial connects to rpcURL and caches the chain id.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	eth := ethclient.NewClient(rpcClient)

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, &TransportError{Op: "chainID", Err: err}
	}

	return &Client{eth: eth, rpc: rpcClient, chainID: chainID}, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.chainID, nil
}

// dataError is the subset of go-ethereum's rpc.DataError this client relies
// on to recover a revert's raw payload from a failed eth_call.
type dataError interface {
	error
	ErrorData() interface{}
}

// Call performs an eth_call, applying overrides when non-empty. A revert is
// returned as a *RevertData (not an error), everything else as a
// TransportError.
func (c *Client) Call(ctx context.Context, from, to common.Address, data []byte, overrides map[common.Address]CallOverride) ([]byte, *RevertData, error) {
	msg := ethereum.CallMsg{From: from, To: &to, Data: data}

	var result []byte
	var err error
	if len(overrides) == 0 {
		result, err = c.eth.CallContract(ctx, msg, nil)
	} else {
		result, err = c.callWithOverrides(ctx, msg, overrides)
	}

	if err == nil {
		return result, nil, nil
	}

	if dataErr, ok := err.(dataError); ok {
		raw := decodeErrorData(dataErr.ErrorData())
		if raw != nil {
			return nil, &RevertData{Raw: raw}, nil
		}
	}

	return nil, nil, &TransportError{Op: "eth_call", Err: err}
}

// callWithOverrides issues eth_call with a third "state override" argument,
// the shape geth's debug/eth namespaces expect: an address-keyed map of
// balance/code overrides.
func (c *Client) callWithOverrides(ctx context.Context, msg ethereum.CallMsg, overrides map[common.Address]CallOverride) ([]byte, error) {
	callArg := toCallArg(msg)
	overrideArg := make(map[common.Address]map[string]interface{}, len(overrides))
	for addr, o := range overrides {
		entry := map[string]interface{}{}
		if o.Balance != nil {
			entry["balance"] = (*hexutil.Big)(o.Balance)
		}
		if len(o.Code) > 0 {
			entry["code"] = hexutil.Bytes(o.Code)
		}
		overrideArg[addr] = entry
	}

	var hex hexutil.Bytes
	err := c.rpc.CallContext(ctx, &hex, "eth_call", callArg, "latest", overrideArg)
	if err != nil {
		return nil, err
	}
	return hex, nil
}

func toCallArg(msg ethereum.CallMsg) map[string]interface{} {
	arg := map[string]interface{}{
		"to":   msg.To,
		"data": hexutil.Bytes(msg.Data),
	}
	if msg.From != (common.Address{}) {
		arg["from"] = msg.From
	}
	return arg
}

// decodeErrorData recovers the raw revert bytes from the interface{} a
// go-ethereum rpc.DataError hands back, which is either already []byte or a
// 0x-prefixed hex string depending on transport.
func decodeErrorData(data interface{}) []byte {
	switch v := data.(type) {
	case []byte:
		return v
	case string:
		raw, err := hexutil.Decode(v)
		if err != nil {
			return nil
		}
		return raw
	default:
		return nil
	}
}

func (c *Client) LatestBlock(ctx context.Context) (BlockInfo, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return BlockInfo{}, &TransportError{Op: "eth_getBlockByNumber", Err: err}
	}

	return BlockInfo{
		Number:        header.Number.Uint64(),
		BaseFeePerGas: header.BaseFee,
		GasUsed:       header.GasUsed,
		GasLimit:      header.GasLimit,
	}, nil
}

func (c *Client) FeeHistory(ctx context.Context, blockCount uint64, percentiles []float64) (FeeHistory, error) {
	history, err := c.eth.FeeHistory(ctx, blockCount, nil, percentiles)
	if err != nil {
		return FeeHistory{}, &TransportError{Op: "eth_feeHistory", Err: err}
	}

	return FeeHistory{
		BaseFeePerGas: history.BaseFee,
		Reward:        history.Reward,
	}, nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &TransportError{Op: "eth_gasPrice", Err: err}
	}
	return price, nil
}

// EstimateFees suggests fees: SuggestGasPrice for legacy chains,
// SuggestGasTipCap plus a doubled base fee for EIP-1559 chains. The legacy
// flag is set for chains without EIP-1559 support or on explicit caller
// request.
func (c *Client) EstimateFees(ctx context.Context, legacy bool) (FeeEstimate, error) {
	if legacy {
		price, err := c.GasPrice(ctx)
		if err != nil {
			return FeeEstimate{}, err
		}
		return FeeEstimate{GasPrice: price}, nil
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return FeeEstimate{}, &TransportError{Op: "eth_maxPriorityFeePerGas", Err: err}
	}

	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return FeeEstimate{}, &TransportError{Op: "eth_getBlockByNumber", Err: err}
	}
	if header.BaseFee == nil {
		price, err := c.GasPrice(ctx)
		if err != nil {
			return FeeEstimate{}, err
		}
		return FeeEstimate{GasPrice: price}, nil
	}

	maxFee := new(big.Int).Add(new(big.Int).Mul(header.BaseFee, big.NewInt(2)), tip)
	return FeeEstimate{MaxFeePerGas: maxFee, MaxPriorityFeePerGas: tip}, nil
}

var _ Provider = (*Client)(nil)
