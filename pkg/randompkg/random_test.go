package randompkg

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIntBetween(t *testing.T) {
	for i := 0; i < 1000; i++ {
		got := IntBetween(3, 5)
		if got < 3 || got > 5 {
			t.Fatalf("IntBetween(3, 5)=%d, want value in [3, 5]", got)
		}
	}
}

func TestDigits(t *testing.T) {
	got := Digits(12)
	if len(got) != 12 {
		t.Fatalf("len(Digits(12))=%d, want 12", len(got))
	}

	for _, r := range got {
		if r < '0' || r > '9' {
			t.Fatalf("Digits(12)=%q contains non digit %q", got, r)
		}
	}
}

func TestMoneyAmountBetween(t *testing.T) {
	min, max := decimal.NewFromInt(10), decimal.NewFromInt(20)

	for i := 0; i < 100; i++ {
		got := MoneyAmountBetween(10, 20)
		if got.LessThan(min) || got.GreaterThan(max) {
			t.Fatalf("MoneyAmountBetween(10, 20)=%v, out of range", got)
		}

		if got.Exponent() < -2 {
			t.Fatalf("MoneyAmountBetween(10, 20)=%v, want at most 2 decimals", got)
		}
	}
}
