package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tradingtools/internal/amount"
	"tradingtools/internal/chain"
	"tradingtools/internal/model"
)

// Balances answers balance queries for native ETH and ERC20 tokens.
type Balances struct {
	provider chain.Provider
	logger   *zap.Logger
}

func NewBalances(provider chain.Provider, logger *zap.Logger) *Balances {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Balances{provider: provider, logger: logger}
}

// RawBalance returns the wallet's raw smallest-unit balance of a token.
func (b *Balances) RawBalance(ctx context.Context, wallet common.Address, d model.TokenDescriptor) (*big.Int, error) {
	if d.Native {
		return b.provider.NativeBalance(ctx, wallet)
	}
	return b.provider.TokenBalance(ctx, d.Address, wallet)
}

// Balance returns the wallet's balance as a typed, decimal-safe record.
func (b *Balances) Balance(ctx context.Context, wallet common.Address, d model.TokenDescriptor) (model.BalanceResult, error) {
	raw, err := b.RawBalance(ctx, wallet, d)
	if err != nil {
		return model.BalanceResult{}, err
	}

	display, err := amount.ToDisplay(raw, d.Decimals)
	if err != nil {
		return model.BalanceResult{}, err
	}

	b.logger.Debug("balance fetched",
		zap.String("wallet", wallet.Hex()),
		zap.String("token", d.Symbol),
		zap.String("raw", raw.String()),
	)

	return model.BalanceResult{
		Address:   wallet.Hex(),
		Balance:   display,
		Decimals:  d.Decimals,
		Raw:       raw.String(),
		TokenType: d.Symbol,
	}, nil
}
