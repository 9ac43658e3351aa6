// Package tools exposes the three trading tools as stateless boundary
// functions: validate input, delegate to the engine, return a structured
// result or a classified error. Nothing here retains state between calls.
package tools

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradingtools/internal/chain"
	"tradingtools/internal/engine"
	"tradingtools/internal/model"
	"tradingtools/internal/token"
)

// Toolset bundles the engine components behind the three tool entry points.
type Toolset struct {
	resolver *token.Resolver
	balances *engine.Balances
	prices   *engine.PriceEngine
	swap     *engine.SwapSimulator
	logger   *zap.Logger
}

// New wires a toolset from a provider and a seeded registry.
func New(provider chain.Provider, registry *token.Registry, logger *zap.Logger) *Toolset {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := token.NewResolver(registry, provider, logger)
	balances := engine.NewBalances(provider, logger)
	prices := engine.NewPriceEngine(provider, registry, logger)
	swap := engine.NewSwapSimulator(provider, registry, prices, balances, logger)
	return &Toolset{
		resolver: resolver,
		balances: balances,
		prices:   prices,
		swap:     swap,
		logger:   logger,
	}
}

func parseWallet(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, model.Errf(model.KindInvalidAddress,
			"invalid wallet address %q", address)
	}
	return common.HexToAddress(address), nil
}

// GetBalance returns a wallet's native ETH balance, or its balance of the
// token identified by tokenIdentifier (address or registered symbol).
func (t *Toolset) GetBalance(ctx context.Context, address, tokenIdentifier string) (model.BalanceResult, error) {
	wallet, err := parseWallet(address)
	if err != nil {
		return model.BalanceResult{}, err
	}

	d := token.Native
	if tokenIdentifier != "" {
		d, err = t.resolver.Resolve(ctx, tokenIdentifier)
		if err != nil {
			return model.BalanceResult{}, err
		}
	}

	return t.balances.Balance(ctx, wallet, d)
}

// GetTokenPrice returns the token's spot price in the requested quote
// currency (USD by default).
func (t *Toolset) GetTokenPrice(ctx context.Context, tokenIdentifier, quoteCurrency string) (model.PriceResult, error) {
	quote, err := engine.ParseQuote(quoteCurrency)
	if err != nil {
		return model.PriceResult{}, err
	}

	d, err := t.resolver.Resolve(ctx, tokenIdentifier)
	if err != nil {
		return model.PriceResult{}, err
	}

	return t.prices.Price(ctx, d, quote)
}

// SwapTokens simulates a swap without submitting anything.
func (t *Toolset) SwapTokens(ctx context.Context, fromToken, toToken, amountStr string, slippage decimal.Decimal, walletAddress string) (model.SwapSimulationResult, error) {
	from, err := t.resolver.Resolve(ctx, fromToken)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}
	to, err := t.resolver.Resolve(ctx, toToken)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}
	wallet, err := parseWallet(walletAddress)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}

	return t.swap.Simulate(ctx, engine.SwapRequest{
		From:      from,
		To:        to,
		FromLabel: fromToken,
		ToLabel:   toToken,
		Amount:    amountStr,
		Slippage:  slippage,
		Wallet:    wallet,
	})
}
