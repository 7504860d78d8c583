// Package annuity computes fixed monthly installments for amortizing loans.
package annuity

import "github.com/shopspring/decimal"

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// MonthlyInstallment returns the fixed payment that amortizes principal over
// months at the given annual interest rate (in percent), rounded to two
// decimal places. A zero rate degenerates to principal / months.
//
//	r = rate / 12 / 100
//	emi = P * r * (1+r)^n / ((1+r)^n - 1)
func MonthlyInstallment(principal, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(months))
	r := annualRatePct.Div(twelve).Div(hundred)
	if r.IsZero() {
		return principal.Div(n).Round(2)
	}
	pow := one.Add(r).Pow(n)
	emi := principal.Mul(r).Mul(pow).Div(pow.Sub(one))
	return emi.Round(2)
}
