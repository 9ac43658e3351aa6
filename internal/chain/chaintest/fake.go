// Package chaintest provides an in-memory Provider for tests. It counts
// every call so tests can assert fail-fast behavior (no chain reads before
// validation passes).
package chaintest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"tradingtools/internal/chain"
	"tradingtools/internal/model"
)

type pairKey struct {
	a common.Address
	b common.Address
}

// TokenInfo seeds metadata introspection results.
type TokenInfo struct {
	Symbol   string
	Decimals uint8
}

// FakeProvider is a configurable chain.Provider. Zero value is usable: every
// lookup misses and errors the way the real client would.
type FakeProvider struct {
	mu sync.Mutex

	nativeBalances map[common.Address]*big.Int
	tokenBalances  map[common.Address]map[common.Address]*big.Int
	tokenInfo      map[common.Address]TokenInfo
	pairs          map[pairKey]common.Address
	reserves       map[common.Address]chain.PairState

	GasEstimate uint64
	GasPriceWei *big.Int

	// Errors force a failure for one method when set.
	NativeBalanceErr error
	TokenBalanceErr  error
	MetadataErr      error
	PairErr          error
	ReservesErr      error
	EstimateGasErr   error
	GasPriceErr      error

	calls map[string]int
}

var _ chain.Provider = (*FakeProvider)(nil)

func (f *FakeProvider) record(method string) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	f.mu.Unlock()
}

// Calls returns the invocation count of one provider method.
func (f *FakeProvider) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of provider invocations across all methods.
func (f *FakeProvider) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// SetNativeBalance seeds a native balance.
func (f *FakeProvider) SetNativeBalance(account common.Address, wei *big.Int) {
	f.mu.Lock()
	if f.nativeBalances == nil {
		f.nativeBalances = make(map[common.Address]*big.Int)
	}
	f.nativeBalances[account] = wei
	f.mu.Unlock()
}

// SetTokenBalance seeds an ERC20 balance.
func (f *FakeProvider) SetTokenBalance(token, account common.Address, raw *big.Int) {
	f.mu.Lock()
	if f.tokenBalances == nil {
		f.tokenBalances = make(map[common.Address]map[common.Address]*big.Int)
	}
	if f.tokenBalances[token] == nil {
		f.tokenBalances[token] = make(map[common.Address]*big.Int)
	}
	f.tokenBalances[token][account] = raw
	f.mu.Unlock()
}

// SetTokenInfo seeds metadata introspection for a token.
func (f *FakeProvider) SetTokenInfo(token common.Address, info TokenInfo) {
	f.mu.Lock()
	if f.tokenInfo == nil {
		f.tokenInfo = make(map[common.Address]TokenInfo)
	}
	f.tokenInfo[token] = info
	f.mu.Unlock()
}

// SetPair seeds a pool for a token pair, in both orders, with its reserve
// snapshot. token0 of the snapshot is tokenA.
func (f *FakeProvider) SetPair(tokenA, tokenB, pair common.Address, reserveA, reserveB *big.Int) {
	f.mu.Lock()
	if f.pairs == nil {
		f.pairs = make(map[pairKey]common.Address)
	}
	if f.reserves == nil {
		f.reserves = make(map[common.Address]chain.PairState)
	}
	f.pairs[pairKey{tokenA, tokenB}] = pair
	f.pairs[pairKey{tokenB, tokenA}] = pair
	f.reserves[pair] = chain.PairState{Token0: tokenA, Reserve0: reserveA, Reserve1: reserveB}
	f.mu.Unlock()
}

func (f *FakeProvider) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	f.record("NativeBalance")
	if f.NativeBalanceErr != nil {
		return nil, f.NativeBalanceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if wei, ok := f.nativeBalances[account]; ok {
		return new(big.Int).Set(wei), nil
	}
	return big.NewInt(0), nil
}

func (f *FakeProvider) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	f.record("TokenBalance")
	if f.TokenBalanceErr != nil {
		return nil, f.TokenBalanceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, ok := f.tokenBalances[token][account]; ok {
		return new(big.Int).Set(raw), nil
	}
	return big.NewInt(0), nil
}

func (f *FakeProvider) TokenMetadata(ctx context.Context, token common.Address) (string, uint8, error) {
	f.record("TokenMetadata")
	if f.MetadataErr != nil {
		return "", 0, f.MetadataErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.tokenInfo[token]; ok {
		return info.Symbol, info.Decimals, nil
	}
	return "", 0, model.Errf(model.KindChainUnavailable, "no metadata for %s", token.Hex())
}

func (f *FakeProvider) PairFor(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	f.record("PairFor")
	if f.PairErr != nil {
		return common.Address{}, f.PairErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pair, ok := f.pairs[pairKey{tokenA, tokenB}]; ok {
		return pair, nil
	}
	return common.Address{}, model.Errf(model.KindPoolNotFound,
		"no canonical pool for %s/%s", tokenA.Hex(), tokenB.Hex())
}

func (f *FakeProvider) PairReserves(ctx context.Context, pair common.Address) (chain.PairState, error) {
	f.record("PairReserves")
	if f.ReservesErr != nil {
		return chain.PairState{}, f.ReservesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.reserves[pair]; ok {
		return chain.PairState{
			Token0:   state.Token0,
			Reserve0: new(big.Int).Set(state.Reserve0),
			Reserve1: new(big.Int).Set(state.Reserve1),
		}, nil
	}
	return chain.PairState{}, model.Errf(model.KindChainUnavailable, "unknown pair %s", pair.Hex())
}

func (f *FakeProvider) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.record("EstimateGas")
	if f.EstimateGasErr != nil {
		return 0, f.EstimateGasErr
	}
	if f.GasEstimate == 0 {
		return 21000, nil
	}
	return f.GasEstimate, nil
}

func (f *FakeProvider) GasPrice(ctx context.Context) (*big.Int, error) {
	f.record("GasPrice")
	if f.GasPriceErr != nil {
		return nil, f.GasPriceErr
	}
	if f.GasPriceWei == nil {
		return big.NewInt(1_000_000_000), nil
	}
	return new(big.Int).Set(f.GasPriceWei), nil
}
