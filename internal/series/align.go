package series

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// Aligned holds several assets' closes on a shared timestamp grid.
type Aligned struct {
	// Assets are sorted by symbol.
	Assets []string
	Times  []time.Time
	// Closes maps each asset to closes parallel to Times.
	Closes map[string][]float64
}

// Len returns the number of shared timestamps.
func (a Aligned) Len() int {
	return len(a.Times)
}

// Align inner-joins the series on timestamp: only instants present in every
// series survive, so no asset has a missing value on the grid.
func Align(prices map[string]types.PriceSeries) Aligned {
	assets := make([]string, 0, len(prices))
	for asset := range prices {
		assets = append(assets, asset)
	}

	sort.Strings(assets)

	aligned := Aligned{Assets: assets, Closes: make(map[string][]float64, len(assets))}
	if len(assets) == 0 {
		return aligned
	}

	lookup := make(map[string]map[int64]float64, len(assets))
	for _, asset := range assets {
		normalized := Normalize(asset, prices[asset].Bars)
		byTime := make(map[int64]float64, len(normalized.Bars))

		for _, bar := range normalized.Bars {
			byTime[bar.Time.UnixNano()] = bar.Close
		}

		lookup[asset] = byTime
	}

	base := Normalize(assets[0], prices[assets[0]].Bars)

	for _, bar := range base.Bars {
		key := bar.Time.UnixNano()
		present := true

		for _, asset := range assets[1:] {
			if _, ok := lookup[asset][key]; !ok {
				present = false

				break
			}
		}

		if !present {
			continue
		}

		aligned.Times = append(aligned.Times, bar.Time)
		for _, asset := range assets {
			aligned.Closes[asset] = append(aligned.Closes[asset], lookup[asset][key])
		}
	}

	return aligned
}
