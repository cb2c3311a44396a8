// Package money holds the bounds shared by every monetary value the service
// stores.
package money

import "github.com/shopspring/decimal"

// Amount bounds match NUMERIC(12,2): two fractional digits, below 10^10.
const (
	AmountPrecision = 12
	AmountScale     = 2
)

// Rate bounds match NUMERIC(5,4).
const (
	RatePrecision = 5
	RateScale     = 4
)

// Fits reports whether d is representable as NUMERIC(precision, scale)
// without rounding. It never rescales values with extreme exponents.
func Fits(d decimal.Decimal, precision, scale int32) bool {
	if d.IsZero() {
		return true
	}
	digits := int64(d.NumDigits())
	exp := int64(d.Exponent())
	if digits+exp > int64(precision-scale) {
		return false
	}
	if exp >= -int64(scale) {
		return true
	}
	// Excess fractional digits are acceptable only as trailing zeros of
	// the coefficient.
	if -exp-int64(scale) >= digits {
		return false
	}
	return d.Equal(d.Truncate(scale))
}

// IsAmount reports whether d is a non-negative NUMERIC(12,2) value.
func IsAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && Fits(d, AmountPrecision, AmountScale)
}
