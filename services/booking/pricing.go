package booking

import (
	"github.com/shopspring/decimal"
)

// Split divides amount into the provider share and the platform fee.
// The fee is feePercent of amount rounded to whole units; the provider keeps the remainder.
func Split(amount, feePercent float64) (providerShare, platformFee float64) {
	total := decimal.NewFromFloat(amount).Round(2)
	fee := total.Mul(decimal.NewFromFloat(feePercent)).Div(decimal.NewFromInt(100)).Round(0)
	if fee.GreaterThan(total) {
		fee = total
	}
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	share, _ := total.Sub(fee).Float64()
	f, _ := fee.Float64()
	return share, f
}

func roundAmount(amount float64) float64 {
	v, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return v
}
