package forecast

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// MinDailyPoints is the smallest daily close series the engine accepts.
const MinDailyPoints = 30

// Config controls feature construction and the prediction interval.
type Config struct {
	// Lags is the number of lagged log returns used as features.
	Lags int `yaml:"lags" json:"lags" jsonschema:"title=Lags,description=Number of lagged daily log returns,minimum=1,default=5" validate:"min=1"`
	// VolWindow is the rolling window (days) of the volatility feature.
	VolWindow int `yaml:"vol_window" json:"vol_window" jsonschema:"title=Volatility Window,description=Rolling volatility window in days,minimum=1,default=10" validate:"min=1"`
	// MomentumLookback is the distance (days) of the momentum feature.
	MomentumLookback int `yaml:"momentum_lookback" json:"momentum_lookback" jsonschema:"title=Momentum Lookback,description=Momentum lookback in days,minimum=1,default=10" validate:"min=1"`
	// Alpha is the significance level of the prediction interval (0.05 -> 95%).
	Alpha float64 `yaml:"alpha" json:"alpha" jsonschema:"title=Alpha,description=Prediction interval significance level,exclusiveMinimum=0,exclusiveMaximum=1,default=0.05" validate:"gt=0,lt=1"`
	// MinTrainRows is the minimum number of complete training rows.
	MinTrainRows int `yaml:"min_train_rows" json:"min_train_rows" jsonschema:"title=Minimum Training Rows,minimum=1,default=60" validate:"min=1"`
	// Horizon is how many days ahead the target log return looks.
	Horizon int `yaml:"horizon" json:"horizon" jsonschema:"title=Horizon,description=Forecast horizon in days,minimum=1,default=1" validate:"min=1"`
}

// DefaultConfig returns the configuration used by the daily report and dashboard.
func DefaultConfig() Config {
	return Config{
		Lags:             5,
		VolWindow:        10,
		MomentumLookback: 10,
		Alpha:            0.05,
		MinTrainRows:     60,
		Horizon:          1,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid forecast configuration", err)
	}

	return nil
}
