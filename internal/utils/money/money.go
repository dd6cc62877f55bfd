package money

import "github.com/shopspring/decimal"

// Round2 rounds a money amount to two decimal places, half away from zero.
// Every stored money column is NUMERIC(14,2); all arithmetic funnels through here
// before persistence so services and repositories agree on precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampNonNegative floors a balance at zero. Outstanding debt balances are
// clamped rather than rejected; going negative is only an error when the caller
// says so before mutating.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Interest computes rate*principal rounded to two decimal places.
func Interest(principal, rate decimal.Decimal) decimal.Decimal {
	return Round2(principal.Mul(rate))
}
