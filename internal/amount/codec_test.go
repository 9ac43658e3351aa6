package amount

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToRaw(t *testing.T) {
	raw, err := ToRaw("1.5", 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	if raw.Cmp(want) != 0 {
		t.Fatalf("raw mismatch: %s != %s", raw, want)
	}
}

func TestToRawZeroDecimals(t *testing.T) {
	raw, err := ToRaw("42", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("raw mismatch: %s", raw)
	}
}

func TestToRawRejectsOverPrecision(t *testing.T) {
	if _, err := ToRaw("1.1234567", 6); err == nil {
		t.Fatalf("expected error for 7 fractional digits with 6 decimals")
	}
}

func TestToRawRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "-5"} {
		if _, err := ToRaw(in, 18); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestToDisplayMinimal(t *testing.T) {
	raw, _ := new(big.Int).SetString("5123456789012345678", 10)
	got, err := ToDisplay(raw, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "5.123456789012345678" {
		t.Fatalf("display mismatch: %s", got)
	}

	got, err = ToDisplay(big.NewInt(1500000), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1.5" {
		t.Fatalf("expected trailing zeros trimmed, got %s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "0.000001", "123456.789", "0.000000000000000001"}
	for d := uint8(0); d <= 18; d++ {
		for _, in := range inputs {
			raw, err := ToRaw(in, d)
			if err != nil {
				continue // over-precise for this decimals value
			}
			out, err := ToDisplay(raw, d)
			if err != nil {
				t.Fatalf("display %s at %d decimals: %v", in, d, err)
			}
			back, err := ToRaw(out, d)
			if err != nil {
				t.Fatalf("reparse %s at %d decimals: %v", out, d, err)
			}
			if raw.Cmp(back) != 0 {
				t.Fatalf("round trip broke at %d decimals: %s -> %s -> %s", d, in, out, back)
			}
		}
	}
}

func TestValidateSlippage(t *testing.T) {
	if err := ValidateSlippage(decimal.NewFromFloat(0.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateSlippage(decimal.Zero); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateSlippage(decimal.NewFromInt(-1)); err == nil {
		t.Fatalf("expected error for negative slippage")
	}
	if err := ValidateSlippage(decimal.NewFromInt(100)); err == nil {
		t.Fatalf("expected error for 100%% slippage")
	}
}

func TestMinOutput(t *testing.T) {
	// 2475 USDC at 0.5% tolerance is exactly 2462.0625 USDC.
	estimated := big.NewInt(2_475_000_000)
	got := MinOutput(estimated, decimal.NewFromFloat(0.5))
	if got.Cmp(big.NewInt(2_462_062_500)) != 0 {
		t.Fatalf("min output mismatch: %s", got)
	}

	display, err := ToDisplay(got, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if display != "2462.0625" {
		t.Fatalf("display mismatch: %s", display)
	}
}

func TestMinOutputFloors(t *testing.T) {
	// 101 * 0.99 = 99.99 floors to 99.
	got := MinOutput(big.NewInt(101), decimal.NewFromInt(1))
	if got.Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("expected floor to 99, got %s", got)
	}
}

func TestMinOutputZeroSlippage(t *testing.T) {
	got := MinOutput(big.NewInt(12345), decimal.Zero)
	if got.Cmp(big.NewInt(12345)) != 0 {
		t.Fatalf("expected estimate unchanged, got %s", got)
	}
}
