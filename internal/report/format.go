// Package report renders the daily asset report, the portfolio report and
// equity charts, and schedules their generation.
package report

import (
	"math"

	"github.com/shopspring/decimal"
)

const notAvailable = "n/a"

var hundred = decimal.NewFromInt(100)

// fixed rounds x half away from zero to two decimals.
func fixed(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return notAvailable
	}

	return decimal.NewFromFloat(x).StringFixed(2)
}

// percent renders a fraction as a percentage with two decimals.
func percent(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return notAvailable
	}

	return decimal.NewFromFloat(x).Mul(hundred).StringFixed(2) + "%"
}
