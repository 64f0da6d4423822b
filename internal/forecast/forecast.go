// Package forecast fits a next-day log-return regression on lagged returns,
// rolling volatility and momentum, and reports a price forecast with a
// prediction interval.
package forecast

import (
	"math"

	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Forecast fits the model on a daily close series and forecasts the close
// Horizon days after its last complete feature row. Duplicate days are
// collapsed to their last close.
func Forecast(daily types.PriceSeries, cfg Config) (types.ForecastResult, error) {
	return fit(series.DailyCloses(daily), cfg)
}

// ForecastFromIntraday resamples candles to one close per calendar day before
// fitting.
func ForecastFromIntraday(candles types.PriceSeries, cfg Config) (types.ForecastResult, error) {
	return fit(series.DailyCloses(candles), cfg)
}

// ForecastFromTable parses a tabular dataset with a date and a close column and
// forecasts from it. Missing columns surface as a schema error.
func ForecastFromTable(symbol string, table series.Table, opts series.TableOptions, cfg Config) (types.ForecastResult, error) {
	prices, err := series.ParseTable(symbol, table, opts)
	if err != nil {
		return types.ForecastResult{}, err
	}

	return Forecast(prices, cfg)
}

func fit(daily types.PriceSeries, cfg Config) (types.ForecastResult, error) {
	features, err := BuildFeatures(daily, cfg)
	if err != nil {
		return types.ForecastResult{}, err
	}

	rows := features.TrainingRows()
	if len(rows) < cfg.MinTrainRows {
		return types.ForecastResult{}, errors.NewInsufficientDataErrorf(errors.ErrCodeInsufficientTrainRows,
			cfg.MinTrainRows, len(rows), daily.Symbol,
			"not enough training rows after feature construction (%d), need at least %d", len(rows), cfg.MinTrainRows)
	}

	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))

	for i, r := range rows {
		x[i] = features.X[r]
		y[i] = features.Y[r]
	}

	model, err := FitOLS(x, y)
	if err != nil {
		return types.ForecastResult{}, err
	}

	last, ok := features.LastCompleteRow()
	if !ok {
		return types.ForecastResult{}, errors.New(errors.ErrCodeModelFit, "no row with every feature defined")
	}

	mean, lower, upper := model.PredictionInterval(features.X[last], cfg.Alpha)
	lastClose := features.Closes[len(features.Closes)-1]

	return types.ForecastResult{
		Symbol:      daily.Symbol,
		AsOfDate:    features.Dates[len(features.Dates)-1],
		LastClose:   lastClose,
		PredReturn:  mean,
		LowerReturn: lower,
		UpperReturn: upper,
		PredClose:   lastClose * math.Exp(mean),
		LowerClose:  lastClose * math.Exp(lower),
		UpperClose:  lastClose * math.Exp(upper),
		Alpha:       cfg.Alpha,
		NTrain:      model.NObs,
		ModelR2:     model.R2,
	}, nil
}
