package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// ForecastResult is a one-step-ahead OLS forecast with a prediction interval.
type ForecastResult struct {
	Symbol    string    `json:"symbol"`
	AsOfDate  time.Time `json:"as_of_date"`
	LastClose float64   `json:"last_close"`

	PredReturn  float64 `json:"pred_return"`
	LowerReturn float64 `json:"lower_return"`
	UpperReturn float64 `json:"upper_return"`

	PredClose  float64 `json:"pred_close"`
	LowerClose float64 `json:"lower_close"`
	UpperClose float64 `json:"upper_close"`

	// Alpha is the interval's significance level (0.05 for a 95% interval).
	Alpha  float64 `json:"alpha"`
	NTrain int     `json:"n_train"`
	// ModelR2 is the in-sample R-squared. It is usually low for return regressions.
	ModelR2 optional.Option[float64] `json:"-"`
}

// AsOf returns the as-of date formatted as YYYY-MM-DD.
func (r ForecastResult) AsOf() string {
	return r.AsOfDate.Format(time.DateOnly)
}
