package strategy

import "github.com/rxtech-lab/argo-analytics/internal/types"

// BuyAndHold holds a constant long position. The first row's return is 0, so the
// first equity value equals initialValue. Empty and single-row input produce a
// table of the same length.
func BuyAndHold(prices types.PriceSeries, initialValue float64) types.EquityCurveTable {
	returns := periodReturns(prices.Bars)
	rows := make([]types.EquityCurveRow, len(prices.Bars))
	equity := initialValue

	for i, bar := range prices.Bars {
		equity *= 1 + returns[i]
		rows[i] = types.EquityCurveRow{
			Time:           bar.Time,
			Close:          bar.Close,
			Return:         returns[i],
			Signal:         1,
			SignalLag:      1,
			StrategyReturn: returns[i],
			Equity:         equity,
		}
	}

	return types.EquityCurveTable{Symbol: prices.Symbol, Strategy: NameBuyAndHold, Rows: rows}
}
