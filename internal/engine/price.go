package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradingtools/internal/amount"
	"tradingtools/internal/chain"
	"tradingtools/internal/model"
	"tradingtools/internal/token"
)

// QuoteCurrency is the currency a price is expressed in.
type QuoteCurrency string

const (
	QuoteUSD QuoteCurrency = "USD"
	QuoteETH QuoteCurrency = "ETH"
)

// ParseQuote normalizes a quote currency argument, defaulting to USD.
func ParseQuote(s string) (QuoteCurrency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "USD":
		return QuoteUSD, nil
	case "ETH":
		return QuoteETH, nil
	default:
		return "", model.Errf(model.KindUnknownToken,
			"unsupported quote currency %q (supported: USD, ETH)", s)
	}
}

// PriceEngine derives token prices from canonical pool reserves. The ETH leg
// comes from the (token, WETH) pool; the USD leg multiplies in the
// (WETH, USDC) pool rate.
type PriceEngine struct {
	provider chain.Provider
	logger   *zap.Logger
	weth     model.TokenDescriptor
	usdc     model.TokenDescriptor
}

// NewPriceEngine builds a price engine. The registry must carry the WETH and
// USDC seed descriptors.
func NewPriceEngine(provider chain.Provider, registry *token.Registry, logger *zap.Logger) *PriceEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	weth, _ := registry.BySymbol("WETH")
	usdc, _ := registry.BySymbol("USDC")
	return &PriceEngine{provider: provider, logger: logger, weth: weth, usdc: usdc}
}

// Price returns the token's spot price in the requested quote currency. The
// timestamp is the wall-clock time the computation completed; pool state
// itself carries no timestamp in this design.
func (e *PriceEngine) Price(ctx context.Context, d model.TokenDescriptor, quote QuoteCurrency) (model.PriceResult, error) {
	priceETH, err := e.priceInETH(ctx, d)
	if err != nil {
		return model.PriceResult{}, err
	}

	price := priceETH
	if quote == QuoteUSD {
		usdPerETH, err := e.usdPerETH(ctx)
		if err != nil {
			return model.PriceResult{}, err
		}
		price = priceETH.Mul(usdPerETH)
	}

	e.logger.Debug("price computed",
		zap.String("token", d.Symbol),
		zap.String("quote", string(quote)),
		zap.String("price", price.String()),
	)

	return model.PriceResult{
		QuoteCurrency: string(quote),
		Price:         price.String(),
		Timestamp:     time.Now().Unix(),
	}, nil
}

// priceInETH computes reserve_weth / reserve_token with each reserve
// decimal-normalized first. Pools store raw integers and the two tokens
// rarely share a decimal count, so dividing raw values would be off by
// orders of magnitude.
func (e *PriceEngine) priceInETH(ctx context.Context, d model.TokenDescriptor) (decimal.Decimal, error) {
	if d.Native || d.Address == e.weth.Address {
		return decimal.NewFromInt(1), nil
	}

	reserves, err := fetchPoolReserves(ctx, e.provider, d, e.weth, e.weth)
	if err != nil {
		return decimal.Decimal{}, err
	}

	tokenSide := amount.AsDecimal(reserves.ReserveBase, d.Decimals)
	wethSide := amount.AsDecimal(reserves.ReserveQuote, e.weth.Decimals)
	if tokenSide.IsZero() {
		return decimal.Decimal{}, model.Errf(model.KindPoolNotFound,
			"pool for %s/WETH holds no %s liquidity", d.Symbol, d.Symbol)
	}
	return wethSide.Div(tokenSide), nil
}

// usdPerETH computes reserve_usdc / reserve_weth from the canonical
// WETH/USDC pool, decimal-normalized the same way.
func (e *PriceEngine) usdPerETH(ctx context.Context) (decimal.Decimal, error) {
	reserves, err := fetchPoolReserves(ctx, e.provider, e.weth, e.usdc, e.weth)
	if err != nil {
		return decimal.Decimal{}, err
	}

	wethSide := amount.AsDecimal(reserves.ReserveBase, e.weth.Decimals)
	usdcSide := amount.AsDecimal(reserves.ReserveQuote, e.usdc.Decimals)
	if wethSide.IsZero() {
		return decimal.Decimal{}, model.Errf(model.KindPoolNotFound,
			"WETH/USDC pool holds no WETH liquidity")
	}
	return usdcSide.Div(wethSide), nil
}
