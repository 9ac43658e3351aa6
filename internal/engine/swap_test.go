package engine

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"tradingtools/internal/chain/chaintest"
	"tradingtools/internal/model"
	"tradingtools/internal/token"
)

var testWallet = common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")

func newSimulator(fake *chaintest.FakeProvider, r *token.Registry) *SwapSimulator {
	prices := NewPriceEngine(fake, r, nil)
	balances := NewBalances(fake, nil)
	return NewSwapSimulator(fake, r, prices, balances, nil)
}

func swapReq(r *token.Registry, from, to, amt string, slippage decimal.Decimal) SwapRequest {
	fromDesc, _ := r.BySymbol(from)
	toDesc, _ := r.BySymbol(to)
	return SwapRequest{
		From:      fromDesc,
		To:        toDesc,
		FromLabel: from,
		ToLabel:   to,
		Amount:    amt,
		Slippage:  slippage,
		Wallet:    testWallet,
	}
}

func TestSimulateInvalidAmountFailsFast(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	s := newSimulator(fake, r)

	for _, amt := range []string{"abc", "-1", "0", "1.1234567"} {
		req := swapReq(r, "ETH", "USDC", amt, decimal.NewFromFloat(0.5))
		if amt == "1.1234567" {
			req = swapReq(r, "USDC", "ETH", amt, decimal.NewFromFloat(0.5))
		}
		if _, err := s.Simulate(context.Background(), req); err == nil {
			t.Fatalf("expected error for amount %q", amt)
		}
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls before validation, got %d", n)
	}
}

func TestSimulateInvalidSlippageFailsFast(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	s := newSimulator(fake, r)

	_, err := s.Simulate(context.Background(), swapReq(r, "ETH", "USDC", "1", decimal.NewFromInt(100)))
	if model.KindOf(err) != model.KindInvalidSlippage {
		t.Fatalf("expected invalid_slippage, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls, got %d", n)
	}
}

func TestSimulateIdenticalRoute(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	s := newSimulator(fake, r)

	// ETH routes through WETH, so ETH->WETH has no pool.
	_, err := s.Simulate(context.Background(), swapReq(r, "ETH", "WETH", "1", decimal.Zero))
	if model.KindOf(err) != model.KindPoolNotFound {
		t.Fatalf("expected pool_not_found, got %v", err)
	}
	if n := fake.TotalCalls(); n != 0 {
		t.Fatalf("expected no chain calls, got %d", n)
	}
}

func TestSimulateInsufficientBalance(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	seedMainPools(fake, r)
	s := newSimulator(fake, r)

	got, err := s.Simulate(context.Background(), swapReq(r, "ETH", "USDC", "1", decimal.NewFromFloat(0.5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SimulationSuccess {
		t.Fatalf("expected failed simulation: %+v", got)
	}
	if got.Error == nil || *got.Error != "insufficient balance: have 0 ETH, need 1 ETH" {
		t.Fatalf("error message mismatch: %v", got.Error)
	}
}

func TestSimulateFromReserves(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	seedMainPools(fake, r)
	fake.SetNativeBalance(testWallet, mustBig("10000000000000000000"))
	s := newSimulator(fake, r)

	got, err := s.Simulate(context.Background(), swapReq(r, "ETH", "USDC", "1", decimal.NewFromFloat(0.5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SimulationSuccess || got.Error != nil {
		t.Fatalf("expected success: %+v", got)
	}
	if got.EstimateSource != model.EstimateFromReserves {
		t.Fatalf("source mismatch: %s", got.EstimateSource)
	}
	// 1 ETH into a 400 WETH / 1,000,000 USDC pool after the 30 bps fee.
	if got.EstimatedOutput != "2486.30289" {
		t.Fatalf("estimated output mismatch: %s", got.EstimatedOutput)
	}
	if got.MinOutput != "2473.871375" {
		t.Fatalf("min output mismatch: %s", got.MinOutput)
	}
	// Fake defaults: 21000 gas at 1 gwei.
	if got.GasCostNative != "0.000021" {
		t.Fatalf("gas cost mismatch: %s", got.GasCostNative)
	}
	if len(got.Notes) != 0 {
		t.Fatalf("unexpected notes: %v", got.Notes)
	}
}

func TestSimulateFallbackEstimate(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	seedMainPools(fake, r)
	usdt, _ := r.BySymbol("USDT")
	fake.SetTokenBalance(usdt.Address, testWallet, big.NewInt(1_000_000_000))
	s := newSimulator(fake, r)

	// No USDT/USDC pool is seeded, so the estimate degrades to the
	// cross rate through the two WETH pools.
	got, err := s.Simulate(context.Background(), swapReq(r, "USDT", "USDC", "100", decimal.Zero))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SimulationSuccess {
		t.Fatalf("expected success: %+v", got)
	}
	if got.EstimateSource != model.EstimateFromFallback {
		t.Fatalf("source mismatch: %s", got.EstimateSource)
	}
	// 100 USDT at a 1:1 cross rate, discounted to 0.99.
	if got.EstimatedOutput != "99" {
		t.Fatalf("estimated output mismatch: %s", got.EstimatedOutput)
	}
	if len(got.Notes) != 1 || !strings.Contains(got.Notes[0], "pool reserves unavailable") {
		t.Fatalf("notes mismatch: %v", got.Notes)
	}
}

func TestSimulateNoRouteAtAll(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	uni, _ := r.BySymbol("UNI")
	fake.SetTokenBalance(uni.Address, testWallet, mustBig("1000000000000000000"))
	s := newSimulator(fake, r)

	got, err := s.Simulate(context.Background(), swapReq(r, "UNI", "USDC", "1", decimal.Zero))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SimulationSuccess {
		t.Fatalf("expected failed simulation: %+v", got)
	}
	if got.Error == nil || !strings.Contains(*got.Error, "unable to estimate output") {
		t.Fatalf("error mismatch: %v", got.Error)
	}
}

func TestSimulateGasFallbacks(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	seedMainPools(fake, r)
	fake.SetNativeBalance(testWallet, mustBig("10000000000000000000"))
	fake.EstimateGasErr = errors.New("execution reverted")
	fake.GasPriceErr = errors.New("rpc timeout")
	s := newSimulator(fake, r)

	got, err := s.Simulate(context.Background(), swapReq(r, "ETH", "USDC", "1", decimal.Zero))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SimulationSuccess {
		t.Fatalf("expected success: %+v", got)
	}
	// 150000 gas at 20 gwei.
	if got.GasCostNative != "0.003" {
		t.Fatalf("gas cost mismatch: %s", got.GasCostNative)
	}
	if len(got.Notes) != 2 {
		t.Fatalf("expected two gas notes: %v", got.Notes)
	}
}

func TestSimulateBalanceCheckUnavailable(t *testing.T) {
	r := token.NewRegistry()
	fake := &chaintest.FakeProvider{}
	seedMainPools(fake, r)
	fake.NativeBalanceErr = errors.New("rpc timeout")
	s := newSimulator(fake, r)

	got, err := s.Simulate(context.Background(), swapReq(r, "ETH", "USDC", "1", decimal.Zero))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SimulationSuccess {
		t.Fatalf("expected success despite balance failure: %+v", got)
	}
	if len(got.Notes) == 0 || !strings.Contains(got.Notes[0], "balance check unavailable") {
		t.Fatalf("notes mismatch: %v", got.Notes)
	}
}
