package models

import "github.com/shopspring/decimal"

// ComputedTotal returns quantity*rate rounded to cents.
func ComputedTotal(quantity, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(rate)).Round(2)
}

// ApplyIncomeDerivedFields keeps TotalAmount, IsManualTotal and CommissionAmount
// consistent with Quantity and RatePerUnit. It must run before every write.
//
// prev is nil on create. totalSupplied reports whether the caller sent a
// totalAmount in this request; next already holds the merged field values.
func ApplyIncomeDerivedFields(next, prev *Income, totalSupplied bool) {
	computed := ComputedTotal(next.Quantity, next.RatePerUnit)

	switch {
	case totalSupplied:
		total := decimal.NewFromFloat(next.TotalAmount).Round(2)
		next.IsManualTotal = !total.Equal(computed)
		next.TotalAmount = total.InexactFloat64()
	case prev == nil || !next.IsManualTotal:
		// nothing to freeze on create
		next.IsManualTotal = false
		next.TotalAmount = computed.InexactFloat64()
	}

	next.CommissionAmount = 0
	if next.IsManualTotal {
		shortfall := computed.Sub(decimal.NewFromFloat(next.TotalAmount))
		if shortfall.IsPositive() {
			next.CommissionAmount = shortfall.Round(2).InexactFloat64()
		}
	}
}
