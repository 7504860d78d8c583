package annuity

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMonthlyInstallmentWithInterest(t *testing.T) {
	// 5000 at 5% annual over 24 months.
	got := MonthlyInstallment(decimal.NewFromInt(5000), decimal.NewFromFloat(5.0), 24)
	want := decimal.NewFromFloat(219.36)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestMonthlyInstallmentZeroRate(t *testing.T) {
	got := MonthlyInstallment(decimal.NewFromInt(1200), decimal.Zero, 12)
	want := decimal.NewFromFloat(100.00)
	if !got.Equal(want) {
		t.Fatalf("expected exactly %s got %s", want, got)
	}
}

func TestMonthlyInstallmentRounding(t *testing.T) {
	got := MonthlyInstallment(decimal.NewFromInt(1000), decimal.Zero, 3)
	want := decimal.NewFromFloat(333.33)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}

func TestMonthlyInstallmentInvalidTenure(t *testing.T) {
	if got := MonthlyInstallment(decimal.NewFromInt(1000), decimal.Zero, 0); !got.IsZero() {
		t.Fatalf("expected zero for zero tenure, got %s", got)
	}
}
