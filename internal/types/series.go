package types

import (
	"time"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// PriceSeries is the canonical price history for one symbol.
// Bars are strictly ascending and unique by timestamp.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Bars   []MarketData `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close prices in bar order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}

// Times returns the bar timestamps in order.
func (s PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(s.Bars))
	for i, bar := range s.Bars {
		times[i] = bar.Time
	}

	return times
}

// Last returns the most recent bar and false when the series is empty.
func (s PriceSeries) Last() (MarketData, bool) {
	if len(s.Bars) == 0 {
		return MarketData{}, false
	}

	return s.Bars[len(s.Bars)-1], true
}

// Validate checks the ordering invariant. Time-series operations assume it holds.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeUnorderedSeries,
				"series %s is not strictly ascending at index %d (%s after %s)",
				s.Symbol, i, s.Bars[i].Time.Format(time.RFC3339), s.Bars[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}
