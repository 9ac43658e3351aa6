package tools

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"tradingtools/internal/chain/chaintest"
	"tradingtools/internal/model"
	"tradingtools/internal/token"
)

var (
	wallet   = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	walletAt = common.HexToAddress(wallet)
)

func newTestToolset(fake *chaintest.FakeProvider) (*Toolset, *token.Registry) {
	r := token.NewRegistry()
	return New(fake, r, nil), r
}

func TestGetBalanceNative(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	raw, _ := new(big.Int).SetString("5123456789012345678", 10)
	fake.SetNativeBalance(walletAt, raw)
	ts, _ := newTestToolset(fake)

	got, err := ts.GetBalance(context.Background(), wallet, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Balance != "5.123456789012345678" {
		t.Fatalf("balance mismatch: %s", got.Balance)
	}
	if got.TokenType != "ETH" || got.Decimals != 18 {
		t.Fatalf("token mismatch: %+v", got)
	}
	if got.Raw != "5123456789012345678" {
		t.Fatalf("raw mismatch: %s", got.Raw)
	}
}

func TestGetBalanceERC20BySymbol(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, r := newTestToolset(fake)
	usdc, _ := r.BySymbol("USDC")
	fake.SetTokenBalance(usdc.Address, walletAt, big.NewInt(1_500_000))

	got, err := ts.GetBalance(context.Background(), wallet, "usdc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Balance != "1.5" || got.TokenType != "USDC" || got.Decimals != 6 {
		t.Fatalf("result mismatch: %+v", got)
	}
}

func TestGetBalanceInvalidWallet(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, _ := newTestToolset(fake)

	_, err := ts.GetBalance(context.Background(), "0x1234", "")
	if model.KindOf(err) != model.KindInvalidAddress {
		t.Fatalf("expected invalid_address, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls, got %d", n)
	}
}

func TestGetBalanceUnregisteredTokenIntrospects(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, r := newTestToolset(fake)
	addr := common.HexToAddress("0x6982508145454Ce325dDbE47a25d4ec3d2311933")
	fake.SetTokenInfo(addr, chaintest.TokenInfo{Symbol: "PEPE", Decimals: 18})
	fake.SetTokenBalance(addr, walletAt, big.NewInt(2_000_000_000_000_000_000))

	got, err := ts.GetBalance(context.Background(), wallet, addr.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Balance != "2" || got.TokenType != "PEPE" {
		t.Fatalf("result mismatch: %+v", got)
	}
	if _, ok := r.BySymbol("PEPE"); !ok {
		t.Fatalf("expected introspected token to be registered")
	}
}

func TestGetTokenPriceDefaultsToUSD(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, r := newTestToolset(fake)
	weth, _ := r.BySymbol("WETH")
	usdc, _ := r.BySymbol("USDC")
	reserveWETH, _ := new(big.Int).SetString("400000000000000000000", 10)
	fake.SetPair(weth.Address, usdc.Address,
		common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"),
		reserveWETH, big.NewInt(1_000_000_000_000))

	got, err := ts.GetTokenPrice(context.Background(), "ETH", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "2500" || got.QuoteCurrency != "USD" {
		t.Fatalf("result mismatch: %+v", got)
	}
	if got.Timestamp == 0 {
		t.Fatalf("expected a timestamp")
	}
}

func TestGetTokenPriceBadQuoteFailsFast(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, _ := newTestToolset(fake)

	_, err := ts.GetTokenPrice(context.Background(), "ETH", "JPY")
	if model.KindOf(err) != model.KindUnknownToken {
		t.Fatalf("expected unknown_token, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls, got %d", n)
	}
}

func TestSwapTokensResolvesBeforeChain(t *testing.T) {
	fake := &chaintest.FakeProvider{}
	ts, _ := newTestToolset(fake)

	_, err := ts.SwapTokens(context.Background(), "NOPE", "USDC", "1", decimal.Zero, wallet)
	if model.KindOf(err) != model.KindUnknownToken {
		t.Fatalf("expected unknown_token, got %v", err)
	}

	_, err = ts.SwapTokens(context.Background(), "ETH", "USDC", "1", decimal.Zero, "not-an-address")
	if model.KindOf(err) != model.KindInvalidAddress {
		t.Fatalf("expected invalid_address, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls, got %d", n)
	}
}
