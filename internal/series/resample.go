package series

import (
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// DailyCloses buckets bars by calendar day in each bar's own location and keeps the
// last observed close of every day. Days without bars do not appear. Already-daily
// input passes through with timestamps truncated to midnight.
func DailyCloses(s types.PriceSeries) types.PriceSeries {
	normalized := Normalize(s.Symbol, s.Bars)
	out := make([]types.MarketData, 0, len(normalized.Bars))

	for _, bar := range normalized.Bars {
		y, m, d := bar.Time.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, bar.Time.Location())

		if n := len(out); n > 0 && out[n-1].Time.Equal(day) {
			out[n-1].Close = bar.Close

			continue
		}

		out = append(out, types.MarketData{Symbol: s.Symbol, Time: day, Close: bar.Close})
	}

	return types.PriceSeries{Symbol: s.Symbol, Bars: out}
}
