// Package series turns raw provider output into canonical price series:
// time-sorted, unique by timestamp, with unusable closes dropped.
package series

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Normalize sorts bars by time, keeps the last bar for duplicated timestamps and
// drops bars whose close is NaN or infinite. The input slice is not modified.
func Normalize(symbol string, bars []types.MarketData) types.PriceSeries {
	sorted := make([]types.MarketData, 0, len(bars))

	for _, bar := range bars {
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
			continue
		}

		if bar.Symbol == "" {
			bar.Symbol = symbol
		}

		sorted = append(sorted, bar)
	}

	// stable so that "last wins" refers to input order among equal timestamps
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	out := make([]types.MarketData, 0, len(sorted))

	for _, bar := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(bar.Time) {
			out[n-1] = bar

			continue
		}

		out = append(out, bar)
	}

	return types.PriceSeries{Symbol: symbol, Bars: out}
}

// FromCloses builds a series from parallel time and close slices.
func FromCloses(symbol string, times []time.Time, closes []float64) types.PriceSeries {
	n := min(len(times), len(closes))
	bars := make([]types.MarketData, n)

	for i := 0; i < n; i++ {
		bars[i] = types.MarketData{Symbol: symbol, Time: times[i], Close: closes[i]}
	}

	return Normalize(symbol, bars)
}
