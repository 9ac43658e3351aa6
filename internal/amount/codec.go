// Package amount converts between raw smallest-unit integers and human
// decimal strings. Every conversion is exact; binary floating point is never
// used on an amount path because most base-10 fractions have no finite
// binary representation.
package amount

import (
	"math/big"

	"github.com/shopspring/decimal"

	"tradingtools/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ToRaw parses a non-negative decimal string into smallest units. It rejects
// malformed input and input with more fractional digits than the token
// allows: silent truncation would corrupt the amount.
func ToRaw(display string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(display)
	if err != nil {
		return nil, model.Errf(model.KindInvalidAmount, "invalid amount %q", display)
	}
	if d.IsNegative() {
		return nil, model.Errf(model.KindInvalidAmount, "amount %q must not be negative", display)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, model.Errf(model.KindInvalidAmount,
			"amount %q has more than %d fractional digits", display, decimals)
	}
	return shifted.BigInt(), nil
}

// ToDisplay renders raw smallest units as the minimal exact decimal string:
// no trailing zeros, no rounding.
func ToDisplay(raw *big.Int, decimals uint8) (string, error) {
	if raw == nil {
		return "", model.Errf(model.KindInternalError, "nil raw amount")
	}
	if raw.Sign() < 0 {
		return "", model.Errf(model.KindInvalidAmount, "raw amount %s must not be negative", raw)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String(), nil
}

// AsDecimal returns the display-unit value of a raw amount as an exact
// decimal, for ratio math that must normalize decimals before dividing.
func AsDecimal(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ValidateSlippage checks a slippage percentage is within [0, 100).
func ValidateSlippage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(hundred) {
		return model.Errf(model.KindInvalidSlippage,
			"slippage %s%% out of range [0, 100)", pct)
	}
	return nil
}

// MinOutput applies a slippage tolerance to an estimated raw output,
// rounding down. Rounding up would promise more protection than the
// tolerance actually delivers.
func MinOutput(estimated *big.Int, slippagePct decimal.Decimal) *big.Int {
	multiplier := hundred.Sub(slippagePct)
	out := decimal.NewFromBigInt(estimated, 0).Mul(multiplier).Shift(-2)
	return out.Floor().BigInt()
}
