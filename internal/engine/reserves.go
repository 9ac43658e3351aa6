// Package engine implements the price engine and swap simulator on top of
// the chain provider. All chain interaction here is read-only.
package engine

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"tradingtools/internal/chain"
	"tradingtools/internal/model"
)

// routeAddress returns the on-chain address used for pool routing: the
// native asset trades through its wrapped form.
func routeAddress(d, weth model.TokenDescriptor) common.Address {
	if d.Native {
		return weth.Address
	}
	return d.Address
}

// fetchPoolReserves reads the canonical pair for (base, quote) and orders
// the raw reserves by the pair's token0.
func fetchPoolReserves(ctx context.Context, provider chain.Provider, base, quote, weth model.TokenDescriptor) (model.PoolReserves, error) {
	baseAddr := routeAddress(base, weth)
	quoteAddr := routeAddress(quote, weth)

	pair, err := provider.PairFor(ctx, baseAddr, quoteAddr)
	if err != nil {
		return model.PoolReserves{}, err
	}

	state, err := provider.PairReserves(ctx, pair)
	if err != nil {
		return model.PoolReserves{}, err
	}

	reserves := model.PoolReserves{Base: base, Quote: quote}
	if state.Token0 == baseAddr {
		reserves.ReserveBase, reserves.ReserveQuote = state.Reserve0, state.Reserve1
	} else {
		reserves.ReserveBase, reserves.ReserveQuote = state.Reserve1, state.Reserve0
	}
	return reserves, nil
}
