package engine

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradingtools/internal/amount"
	"tradingtools/internal/chain"
	"tradingtools/internal/model"
	"tradingtools/internal/token"
)

// Pool fee: 30 bps taken from the input, the V2 constant.
var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
)

const fallbackGasLimit = 150_000

var (
	fallbackGasPrice = big.NewInt(20_000_000_000) // 20 gwei
	fallbackDiscount = decimal.RequireFromString("0.99")
)

// SwapRequest is a validated, resolved swap simulation request. FromLabel
// and ToLabel echo the identifiers the caller used.
type SwapRequest struct {
	From      model.TokenDescriptor
	To        model.TokenDescriptor
	FromLabel string
	ToLabel   string
	Amount    string
	Slippage  decimal.Decimal
	Wallet    common.Address
}

// SwapSimulator estimates the outcome of a hypothetical swap from read-only
// chain state. It never signs or submits anything.
type SwapSimulator struct {
	provider chain.Provider
	prices   *PriceEngine
	balances *Balances
	logger   *zap.Logger
	weth     model.TokenDescriptor
}

func NewSwapSimulator(provider chain.Provider, registry *token.Registry, prices *PriceEngine, balances *Balances, logger *zap.Logger) *SwapSimulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	weth, _ := registry.BySymbol("WETH")
	return &SwapSimulator{
		provider: provider,
		prices:   prices,
		balances: balances,
		logger:   logger,
		weth:     weth,
	}
}

// Simulate runs the full swap simulation. Input validation completes before
// any chain call is issued; the three independent reads (balance, reserves,
// gas) then run concurrently. Insufficient balance is a reported business
// outcome: the result comes back well-formed with SimulationSuccess=false.
func (s *SwapSimulator) Simulate(ctx context.Context, req SwapRequest) (model.SwapSimulationResult, error) {
	inRaw, err := amount.ToRaw(req.Amount, req.From.Decimals)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}
	if inRaw.Sign() <= 0 {
		return model.SwapSimulationResult{}, model.Errf(model.KindInvalidAmount,
			"amount %q must be positive", req.Amount)
	}
	if err := amount.ValidateSlippage(req.Slippage); err != nil {
		return model.SwapSimulationResult{}, err
	}

	fromAddr := routeAddress(req.From, s.weth)
	toAddr := routeAddress(req.To, s.weth)
	if fromAddr == toAddr {
		return model.SwapSimulationResult{}, model.Errf(model.KindPoolNotFound,
			"no pool exists for %s/%s: identical route", req.From.Symbol, req.To.Symbol)
	}

	// Independent reads, no data dependency between them.
	var (
		wg sync.WaitGroup

		balRaw *big.Int
		balErr error

		reserves model.PoolReserves
		resErr   error

		gasLimit    uint64
		gasLimitErr error
		gasPrice    *big.Int
		gasPriceErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		balRaw, balErr = s.balances.RawBalance(ctx, req.Wallet, req.From)
	}()
	go func() {
		defer wg.Done()
		reserves, resErr = fetchPoolReserves(ctx, s.provider, req.From, req.To, s.weth)
	}()
	go func() {
		defer wg.Done()
		gasLimit, gasLimitErr = s.estimateSwapGas(ctx, req.Wallet, fromAddr, toAddr, inRaw)
		gasPrice, gasPriceErr = s.provider.GasPrice(ctx)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return model.SwapSimulationResult{}, model.WrapErr(model.KindChainUnavailable, err, "simulation aborted")
	}

	result := model.SwapSimulationResult{
		FromToken:          req.FromLabel,
		ToToken:            req.ToLabel,
		InputAmount:        req.Amount,
		EstimatedOutput:    "0",
		MinOutput:          "0",
		GasCostNative:      "0",
		SlippagePercentage: req.Slippage.String(),
	}

	var notes []string
	if balErr != nil {
		s.logger.Warn("balance check failed, continuing", zap.Error(balErr))
		notes = append(notes, fmt.Sprintf("balance check unavailable: %s", model.MessageOf(balErr)))
	} else if balRaw.Cmp(inRaw) < 0 {
		have, _ := amount.ToDisplay(balRaw, req.From.Decimals)
		msg := fmt.Sprintf("insufficient balance: have %s %s, need %s %s",
			have, req.From.Symbol, req.Amount, req.From.Symbol)
		result.Error = &msg
		result.Notes = notes
		return result, nil
	}

	outRaw, source, note, err := s.estimateOutput(ctx, req, inRaw, reserves, resErr)
	if err != nil {
		msg := model.MessageOf(err)
		result.Error = &msg
		result.Notes = notes
		return result, nil
	}
	if note != "" {
		notes = append(notes, note)
	}

	minRaw := amount.MinOutput(outRaw, req.Slippage)

	if gasLimitErr != nil {
		s.logger.Warn("gas estimation failed, using fallback", zap.Error(gasLimitErr))
		gasLimit = fallbackGasLimit
		notes = append(notes, fmt.Sprintf("gas estimate unavailable, assuming %d gas", fallbackGasLimit))
	}
	if gasPriceErr != nil {
		s.logger.Warn("gas price fetch failed, using fallback", zap.Error(gasPriceErr))
		gasPrice = fallbackGasPrice
		notes = append(notes, "gas price unavailable, assuming 20 gwei")
	}
	gasCostWei := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)

	estimatedDisplay, err := amount.ToDisplay(outRaw, req.To.Decimals)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}
	minDisplay, err := amount.ToDisplay(minRaw, req.To.Decimals)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}
	gasDisplay, err := amount.ToDisplay(gasCostWei, 18)
	if err != nil {
		return model.SwapSimulationResult{}, err
	}

	result.EstimatedOutput = estimatedDisplay
	result.MinOutput = minDisplay
	result.GasCostNative = gasDisplay
	result.SimulationSuccess = true
	result.EstimateSource = source
	result.Notes = notes

	s.logger.Info("swap simulated",
		zap.String("from", req.From.Symbol),
		zap.String("to", req.To.Symbol),
		zap.String("amount", req.Amount),
		zap.String("estimated_output", estimatedDisplay),
		zap.String("estimate_source", string(source)),
	)

	return result, nil
}

// estimateOutput prefers the constant-product formula over live reserves.
// When reserve data is unavailable it degrades to the price-engine cross
// rate times a fixed discount, labeled so callers can tell the difference.
func (s *SwapSimulator) estimateOutput(ctx context.Context, req SwapRequest, inRaw *big.Int, reserves model.PoolReserves, resErr error) (*big.Int, model.EstimateSource, string, error) {
	if resErr == nil {
		out := constantProductOut(inRaw, reserves.ReserveBase, reserves.ReserveQuote)
		if out.Sign() > 0 {
			return out, model.EstimateFromReserves, "", nil
		}
		resErr = model.Errf(model.KindPoolNotFound, "pool for %s/%s produced zero output",
			req.From.Symbol, req.To.Symbol)
	}

	s.logger.Warn("reserve-backed estimate unavailable, trying fallback", zap.Error(resErr))

	out, err := s.fallbackOutput(ctx, req.From, req.To, inRaw)
	if err != nil {
		return nil, "", "", model.Errf(model.KindOf(resErr),
			"unable to estimate output: %s", model.MessageOf(resErr))
	}
	note := fmt.Sprintf("pool reserves unavailable (%s); output is a fixed-discount price estimate",
		model.MessageOf(resErr))
	return out, model.EstimateFromFallback, note, nil
}

// fallbackOutput approximates the swap output as the cross rate between the
// two tokens' ETH prices, discounted by a conservative fixed factor.
func (s *SwapSimulator) fallbackOutput(ctx context.Context, from, to model.TokenDescriptor, inRaw *big.Int) (*big.Int, error) {
	priceFrom, err := s.prices.priceInETH(ctx, from)
	if err != nil {
		return nil, err
	}
	priceTo, err := s.prices.priceInETH(ctx, to)
	if err != nil {
		return nil, err
	}
	if priceTo.IsZero() {
		return nil, model.Errf(model.KindPoolNotFound, "no price available for %s", to.Symbol)
	}

	inDec := amount.AsDecimal(inRaw, from.Decimals)
	outDec := inDec.Mul(priceFrom).Div(priceTo).Mul(fallbackDiscount)
	return outDec.Shift(int32(to.Decimals)).Floor().BigInt(), nil
}

// estimateSwapGas asks the node to estimate the equivalent router swap call.
func (s *SwapSimulator) estimateSwapGas(ctx context.Context, wallet, fromAddr, toAddr common.Address, inRaw *big.Int) (uint64, error) {
	routerABI, err := chain.V2RouterABIInstance()
	if err != nil {
		return 0, model.WrapErr(model.KindInternalError, err, "parse router abi")
	}

	deadline := big.NewInt(time.Now().Add(15 * time.Minute).Unix())
	data, err := routerABI.Pack("swapExactTokensForTokens",
		inRaw, big.NewInt(0), []common.Address{fromAddr, toAddr}, wallet, deadline)
	if err != nil {
		return 0, model.WrapErr(model.KindInternalError, err, "pack swap calldata")
	}

	router := chain.V2RouterAddress
	msg := ethereum.CallMsg{From: wallet, To: &router, Data: data}
	return s.provider.EstimateGas(ctx, msg)
}

// constantProductOut applies the constant-product formula with the fee
// taken from the input:
//
//	out = reserveOut * inAfterFee / (reserveIn + inAfterFee)
func constantProductOut(inRaw, reserveIn, reserveOut *big.Int) *big.Int {
	inWithFee := new(big.Int).Mul(inRaw, feeNumerator)
	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Mul(reserveIn, feeDenominator)
	denominator.Add(denominator, inWithFee)
	if denominator.Sign() == 0 {
		return big.NewInt(0)
	}
	return numerator.Div(numerator, denominator)
}
