package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"tradingtools/internal/model"
)

// Options tunes the client's retry behavior.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// Client implements Provider on top of go-ethereum. Transient transport
// failures are retried with exponential backoff; whatever survives the
// retries is wrapped into the classified error taxonomy.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	factory   common.Address

	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewClient dials the RPC endpoint and returns a mainnet-configured client.
func NewClient(ctx context.Context, rpcURL string, opts Options) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		rpcClient:    rpcClient,
		ethClient:    ethclient.NewClient(rpcClient),
		factory:      V2FactoryAddress,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		logger:       logger,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// ChainID returns the chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, model.WrapErr(model.KindChainUnavailable, err, "chain id lookup failed")
	}
	return id, nil
}

// NativeBalance returns the native ETH balance at the latest block.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var err error
		balance, err = c.ethClient.BalanceAt(ctx, account, nil)
		if err != nil {
			c.logger.Warn("native balance fetch failed", zap.String("account", account.Hex()), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, model.WrapErr(model.KindChainUnavailable, err, "native balance fetch failed")
	}
	return balance, nil
}

// TokenBalance returns an ERC20 balanceOf at the latest block.
func (c *Client) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		return nil, model.WrapErr(model.KindInternalError, err, "parse erc20 abi")
	}
	values, err := c.callContract(ctx, token, parsed, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, model.WrapErr(model.KindInternalError, err, "decode balanceOf")
	}
	return balance, nil
}

// TokenMetadata reads symbol and decimals from an ERC20 contract. decimals
// is required; symbol falls back to the bytes32 variant and may be empty.
func (c *Client) TokenMetadata(ctx context.Context, token common.Address) (string, uint8, error) {
	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return "", 0, model.WrapErr(model.KindInternalError, err, "parse erc20 abi")
	}

	values, err := c.callContract(ctx, token, stringABI, "decimals")
	if err != nil {
		return "", 0, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return "", 0, model.WrapErr(model.KindInternalError, err, "decode decimals")
	}

	symbol := ""
	if values, err := c.callContract(ctx, token, stringABI, "symbol"); err == nil {
		if s, ok := values[0].(string); ok {
			symbol = s
		}
	} else if bytes32ABI, abiErr := erc20ABIBytes32Instance(); abiErr == nil {
		if values, err := c.callContract(ctx, token, bytes32ABI, "symbol"); err == nil {
			if s, ok := bytes32ToString(values[0]); ok {
				symbol = s
			}
		} else {
			c.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
		}
	}

	return symbol, decimals, nil
}

// PairFor resolves the canonical V2 pair for a token pair via the factory.
func (c *Client) PairFor(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	parsed, err := v2FactoryABIInstance()
	if err != nil {
		return common.Address{}, model.WrapErr(model.KindInternalError, err, "parse factory abi")
	}
	values, err := c.callContract(ctx, c.factory, parsed, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	pair, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, model.WrapErr(model.KindInternalError, err, "decode getPair")
	}
	if pair == (common.Address{}) {
		return common.Address{}, model.Errf(model.KindPoolNotFound,
			"no canonical pool for %s/%s", tokenA.Hex(), tokenB.Hex())
	}
	return pair, nil
}

// PairReserves reads getReserves and token0 from a V2 pair contract.
func (c *Client) PairReserves(ctx context.Context, pair common.Address) (PairState, error) {
	parsed, err := v2PairABIInstance()
	if err != nil {
		return PairState{}, model.WrapErr(model.KindInternalError, err, "parse pair abi")
	}

	values, err := c.callContract(ctx, pair, parsed, "getReserves")
	if err != nil {
		return PairState{}, err
	}
	if len(values) < 2 {
		return PairState{}, model.Errf(model.KindInternalError, "getReserves returned %d values", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return PairState{}, model.WrapErr(model.KindInternalError, err, "decode reserve0")
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return PairState{}, model.WrapErr(model.KindInternalError, err, "decode reserve1")
	}

	values, err = c.callContract(ctx, pair, parsed, "token0")
	if err != nil {
		return PairState{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return PairState{}, model.WrapErr(model.KindInternalError, err, "decode token0")
	}

	return PairState{Token0: token0, Reserve0: reserve0, Reserve1: reserve1}, nil
}

// EstimateGas runs eth_estimateGas for a read-only simulation of the call.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var err error
		gas, err = c.ethClient.EstimateGas(ctx, msg)
		return err
	})
	if err != nil {
		return 0, model.WrapErr(model.KindChainUnavailable, err, "gas estimation failed")
	}
	return gas, nil
}

// GasPrice returns the suggested gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var err error
		price, err = c.ethClient.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, model.WrapErr(model.KindChainUnavailable, err, "gas price fetch failed")
	}
	return price, nil
}

func (c *Client) callContract(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, model.WrapErr(model.KindInternalError, err, "pack %s", method)
	}

	msg := ethereum.CallMsg{To: &to, Data: data}
	var resp []byte
	err = withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var err error
		resp, err = c.ethClient.CallContract(ctx, msg, nil)
		if err != nil {
			c.logger.Warn("contract call failed",
				zap.String("to", to.Hex()),
				zap.String("method", method),
				zap.Error(err),
			)
		}
		return err
	})
	if err != nil {
		return nil, model.WrapErr(model.KindChainUnavailable, err, "call %s on %s failed", method, to.Hex())
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, model.WrapErr(model.KindChainUnavailable, err, "unpack %s from %s", method, to.Hex())
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
