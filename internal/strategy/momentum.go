package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DefaultMomentumLookback is the trailing window used when none is configured.
const DefaultMomentumLookback = 20

// Momentum is a long/flat rule: be long when the trailing lookback-period change
// was positive. The position held over bar t is the signal observed at t-1, so a
// bar's own close never decides its own return. Until lookback bars exist the
// momentum is undefined and the position is flat.
func Momentum(prices types.PriceSeries, lookback int, initialValue float64) (types.EquityCurveTable, error) {
	if lookback < 1 {
		return types.EquityCurveTable{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"momentum lookback must be a positive integer, got %d", lookback)
	}

	bars := prices.Bars
	returns := periodReturns(bars)
	rows := make([]types.EquityCurveRow, len(bars))
	equity := initialValue
	prevSignal := 0

	for i, bar := range bars {
		mom := optional.None[float64]()
		signal := 0

		if i >= lookback {
			change := bar.Close/bars[i-lookback].Close - 1
			mom = optional.Some(change)

			if change > 0 {
				signal = 1
			}
		}

		strategyReturn := float64(prevSignal) * returns[i]
		equity *= 1 + strategyReturn

		rows[i] = types.EquityCurveRow{
			Time:           bar.Time,
			Close:          bar.Close,
			Return:         returns[i],
			Momentum:       mom,
			Signal:         signal,
			SignalLag:      prevSignal,
			StrategyReturn: strategyReturn,
			Equity:         equity,
		}

		prevSignal = signal
	}

	return types.EquityCurveTable{Symbol: prices.Symbol, Strategy: NameMomentum, Rows: rows}, nil
}
