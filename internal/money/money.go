// Package money centralise l'arithmétique monétaire. Tous les montants
// persistés sont des centimes (int64, comme les minor units Stripe) ; les
// pourcentages et conversions passent par shopspring/decimal — jamais de
// float sur de l'argent.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseCents convertit un montant décimal ("9.99") en centimes.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("montant invalide %q: %w", s, err)
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("montant %q: plus de deux décimales", s)
	}
	return cents.IntPart(), nil
}

// FormatCents rend un montant lisible : 6478 → "64.78".
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}

// PercentOf calcule rate% de amount en centimes, arrondi au centime
// supérieur à partir de 0.5 (half-up). Round() de shopspring arrondit
// "half away from zero", ce qui est half-up pour des montants positifs.
func PercentOf(amountCents int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(rate).
		Div(hundred).
		Round(0).
		IntPart()
}
