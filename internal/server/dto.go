package server

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// EquityRow is the JSON form of types.EquityCurveRow. Momentum is null while undefined.
type EquityRow struct {
	Time           time.Time `json:"timestamp"`
	Close          float64   `json:"close"`
	Return         float64   `json:"return"`
	Momentum       *float64  `json:"momentum"`
	Signal         int       `json:"signal"`
	SignalLag      int       `json:"signal_lag"`
	StrategyReturn float64   `json:"strategy_return"`
	Equity         float64   `json:"equity"`
}

// StrategyResponse is returned by GET /api/strategy/{symbol}.
type StrategyResponse struct {
	Symbol   string              `json:"symbol"`
	Strategy string              `json:"strategy"`
	Metrics  types.MetricsBundle `json:"metrics"`
	Rows     []EquityRow         `json:"rows"`
}

// PortfolioResponse is returned by GET /api/portfolio.
type PortfolioResponse struct {
	Weights     types.WeightVector      `json:"weights"`
	Metrics     types.MetricsBundle     `json:"metrics"`
	Rows        []types.PortfolioRow    `json:"rows"`
	Correlation types.CorrelationMatrix `json:"correlation"`
	Volatility  types.VolatilityTable   `json:"volatility"`
}

// ForecastResponse is the JSON form of types.ForecastResult. ModelR2 is null when undefined.
type ForecastResponse struct {
	Symbol      string   `json:"symbol"`
	AsOfDate    string   `json:"as_of_date"`
	LastClose   float64  `json:"last_close"`
	PredReturn  float64  `json:"pred_return"`
	LowerReturn float64  `json:"lower_return"`
	UpperReturn float64  `json:"upper_return"`
	PredClose   float64  `json:"pred_close"`
	LowerClose  float64  `json:"lower_close"`
	UpperClose  float64  `json:"upper_close"`
	Alpha       float64  `json:"alpha"`
	NTrain      int      `json:"n_train"`
	ModelR2     *float64 `json:"model_r2"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     int    `json:"code"`
	Category string `json:"category"`
}

func toEquityRows(rows []types.EquityCurveRow) []EquityRow {
	out := make([]EquityRow, len(rows))
	for i, row := range rows {
		out[i] = EquityRow{
			Time:           row.Time,
			Close:          row.Close,
			Return:         row.Return,
			Momentum:       ptr(row.Momentum),
			Signal:         row.Signal,
			SignalLag:      row.SignalLag,
			StrategyReturn: row.StrategyReturn,
			Equity:         row.Equity,
		}
	}

	return out
}

func toForecastResponse(r types.ForecastResult) ForecastResponse {
	return ForecastResponse{
		Symbol:      r.Symbol,
		AsOfDate:    r.AsOf(),
		LastClose:   r.LastClose,
		PredReturn:  r.PredReturn,
		LowerReturn: r.LowerReturn,
		UpperReturn: r.UpperReturn,
		PredClose:   r.PredClose,
		LowerClose:  r.LowerClose,
		UpperClose:  r.UpperClose,
		Alpha:       r.Alpha,
		NTrain:      r.NTrain,
		ModelR2:     ptr(r.ModelR2),
	}
}

func ptr(o optional.Option[float64]) *float64 {
	v, err := o.Take()
	if err != nil {
		return nil
	}

	return &v
}
