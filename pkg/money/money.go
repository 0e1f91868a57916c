package money

import "github.com/shopspring/decimal"

// ReferralRate is the credit granted on the cart subtotal when a valid
// referral email is supplied at checkout.
var ReferralRate = decimal.RequireFromString("0.05")

// GSTRate is applied to the cart subtotal at checkout, before any
// credits come off.
var GSTRate = decimal.RequireFromString("0.18")

// Round2 rounds half-up to two decimal places. Every stored or compared
// monetary amount passes through here so rounding happens in exactly
// one place.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampZero floors a value at zero.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
