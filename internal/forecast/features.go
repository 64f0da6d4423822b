package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// FeatureSet is the feature matrix and target built from a daily close series.
// Undefined values are NaN. Row t only uses closes up to and including day t;
// the target of row t is the log return from day t to day t+horizon.
type FeatureSet struct {
	Dates  []time.Time
	Closes []float64
	Names  []string
	X      [][]float64
	Y      []float64
}

// Complete reports whether every feature of row i is defined.
func (f FeatureSet) Complete(i int) bool {
	for _, v := range f.X[i] {
		if math.IsNaN(v) {
			return false
		}
	}

	return true
}

// TrainingRows returns the indices of rows whose features and target are all defined.
func (f FeatureSet) TrainingRows() []int {
	rows := make([]int, 0, len(f.X))
	for i := range f.X {
		if f.Complete(i) && !math.IsNaN(f.Y[i]) {
			rows = append(rows, i)
		}
	}

	return rows
}

// LastCompleteRow returns the most recent row with every feature defined.
func (f FeatureSet) LastCompleteRow() (int, bool) {
	for i := len(f.X) - 1; i >= 0; i-- {
		if f.Complete(i) {
			return i, true
		}
	}

	return 0, false
}

// BuildFeatures computes, for each day t:
//
//	r_lag_k  = r_{t-k}, k = 1..Lags, where r_t = ln(c_t / c_{t-1})
//	vol      = sample std of r_{t-VolWindow} .. r_{t-1}
//	mom      = c_t / c_{t-MomentumLookback} - 1
//	target   = ln(c_{t+Horizon} / c_t)
//
// The volatility window ends at t-1, so day t's own return never enters row t.
func BuildFeatures(daily types.PriceSeries, cfg Config) (FeatureSet, error) {
	if err := cfg.Validate(); err != nil {
		return FeatureSet{}, err
	}

	closes := daily.Closes()
	n := len(closes)

	if n < MinDailyPoints {
		return FeatureSet{}, errors.NewInsufficientDataErrorf(errors.ErrCodeInsufficientDailyPoints,
			MinDailyPoints, n, daily.Symbol,
			"not enough daily points (%d), need at least %d", n, MinDailyPoints)
	}

	logReturns := make([]float64, n)
	logReturns[0] = math.NaN()

	for t := 1; t < n; t++ {
		logReturns[t] = logRatio(closes[t], closes[t-1])
	}

	names := make([]string, 0, cfg.Lags+2)
	for k := 1; k <= cfg.Lags; k++ {
		names = append(names, fmt.Sprintf("r_lag_%d", k))
	}

	names = append(names, "vol", "mom")

	fs := FeatureSet{
		Dates:  daily.Times(),
		Closes: closes,
		Names:  names,
		X:      make([][]float64, n),
		Y:      make([]float64, n),
	}

	for t := 0; t < n; t++ {
		row := make([]float64, 0, len(names))

		for k := 1; k <= cfg.Lags; k++ {
			row = append(row, at(logReturns, t-k))
		}

		row = append(row, rollingStd(logReturns, t-cfg.VolWindow, t), momentum(closes, t, cfg.MomentumLookback))
		fs.X[t] = row

		fs.Y[t] = math.NaN()
		if t+cfg.Horizon < n {
			fs.Y[t] = logRatio(closes[t+cfg.Horizon], closes[t])
		}
	}

	return fs, nil
}

// rollingStd is the sample standard deviation of values[from:to], NaN when the
// window reaches before the series or contains an undefined value.
func rollingStd(values []float64, from, to int) float64 {
	if from < 0 || to-from < 2 {
		return math.NaN()
	}

	window := values[from:to]
	for _, v := range window {
		if math.IsNaN(v) {
			return math.NaN()
		}
	}

	return stat.StdDev(window, nil)
}

func momentum(closes []float64, t, lookback int) float64 {
	if t-lookback < 0 || closes[t-lookback] <= 0 {
		return math.NaN()
	}

	return closes[t]/closes[t-lookback] - 1
}

func logRatio(num, den float64) float64 {
	if num <= 0 || den <= 0 {
		return math.NaN()
	}

	return math.Log(num / den)
}

func at(values []float64, i int) float64 {
	if i < 0 {
		return math.NaN()
	}

	return values[i]
}
