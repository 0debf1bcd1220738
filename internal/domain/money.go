package domain

import "github.com/shopspring/decimal"

const minorUnitExp = 2

// ToMinorUnits converts a decimal amount to minor units, rounding half away
// from zero.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(minorUnitExp).Round(0).IntPart()
}

// FromMinorUnits converts minor units back to a decimal amount.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -minorUnitExp)
}

// FormatMinorUnits renders minor units with two fraction digits.
func FormatMinorUnits(v int64) string {
	return FromMinorUnits(v).StringFixed(minorUnitExp)
}
