// Package token resolves human-facing token identifiers to canonical
// descriptors.
package token

import (
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"tradingtools/internal/model"
)

// NativeAddress is the reserved pseudo-address for native ETH.
var NativeAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// Native is the descriptor for the native asset.
var Native = model.TokenDescriptor{Symbol: "ETH", Address: NativeAddress, Decimals: 18, Native: true}

var seedTokens = []model.TokenDescriptor{
	Native,
	{Symbol: "WETH", Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Decimals: 18},
	{Symbol: "USDC", Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6},
	{Symbol: "USDT", Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Decimals: 6},
	{Symbol: "DAI", Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18},
	{Symbol: "LINK", Address: common.HexToAddress("0x514910771AF9Ca656af840dff83E8264EcF986CA"), Decimals: 18},
	{Symbol: "UNI", Address: common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"), Decimals: 18},
	{Symbol: "AAVE", Address: common.HexToAddress("0x7Fc66500c84A76Ad7e9c93437E434122A1f9AcDd"), Decimals: 18},
	{Symbol: "FRAX", Address: common.HexToAddress("0x853d955aCEf822Db058eb8505911ED77F175b999"), Decimals: 18},
}

// Registry maps symbols and addresses to token descriptors. Reads happen on
// every tool invocation, writes only at startup and on occasional dynamic
// registration, so a reader-writer lock guards the maps.
type Registry struct {
	mu        sync.RWMutex
	bySymbol  map[string]model.TokenDescriptor
	byAddress map[common.Address]model.TokenDescriptor
}

// NewRegistry builds a registry seeded with common mainnet tokens.
func NewRegistry() *Registry {
	r := &Registry{
		bySymbol:  make(map[string]model.TokenDescriptor),
		byAddress: make(map[common.Address]model.TokenDescriptor),
	}
	for _, d := range seedTokens {
		r.Register(d)
	}
	return r
}

// Register inserts or overwrites a descriptor. Idempotent.
func (r *Registry) Register(d model.TokenDescriptor) {
	r.mu.Lock()
	r.bySymbol[strings.ToUpper(d.Symbol)] = d
	r.byAddress[d.Address] = d
	r.mu.Unlock()
}

// BySymbol looks up a descriptor by symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (model.TokenDescriptor, bool) {
	r.mu.RLock()
	d, ok := r.bySymbol[strings.ToUpper(symbol)]
	r.mu.RUnlock()
	return d, ok
}

// ByAddress looks up a descriptor by address. common.Address comparison is
// byte-wise, so hex case never matters.
func (r *Registry) ByAddress(address common.Address) (model.TokenDescriptor, bool) {
	r.mu.RLock()
	d, ok := r.byAddress[address]
	r.mu.RUnlock()
	return d, ok
}

// Symbols returns all registered symbols, sorted.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	symbols := make([]string, 0, len(r.bySymbol))
	for symbol := range r.bySymbol {
		symbols = append(symbols, symbol)
	}
	r.mu.RUnlock()
	sort.Strings(symbols)
	return symbols
}
