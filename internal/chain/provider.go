// Package chain provides read-only Ethereum access for the trading tools.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Uniswap V2 mainnet contracts: the canonical pool venue for this engine.
var (
	V2FactoryAddress = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc8aa6f")
	V2RouterAddress  = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
)

// PairState is a raw reserve snapshot of a V2 pair. Token0 orders the
// reserves; callers match it against their own token addresses.
type PairState struct {
	Token0   common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Provider is the abstract read-only chain access the engine consumes.
// Implementations translate transport failures into the classified error
// taxonomy; raw RPC errors never cross this boundary.
type Provider interface {
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
	TokenMetadata(ctx context.Context, token common.Address) (symbol string, decimals uint8, err error)
	PairFor(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error)
	PairReserves(ctx context.Context, pair common.Address) (PairState, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
}
