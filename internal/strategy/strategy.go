// Package strategy turns a single-asset price series into equity curves.
//
// Every function is pure: the input series is read-only and nothing is cached
// between calls. Bars are assumed strictly ascending (see types.PriceSeries).
package strategy

import "github.com/rxtech-lab/argo-analytics/internal/types"

const (
	NameBuyAndHold = "buy_and_hold"
	NameMomentum   = "momentum"
)

// DefaultInitialValue is the base value of an equity curve.
const DefaultInitialValue = 100.0

// periodReturns returns close_t/close_{t-1} - 1 with the first value set to 0 so
// the output stays row-aligned with the input.
func periodReturns(bars []types.MarketData) []float64 {
	returns := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		returns[i] = bars[i].Close/bars[i-1].Close - 1
	}

	return returns
}
