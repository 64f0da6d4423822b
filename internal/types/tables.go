package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// EquityCurveRow is one row of a single-asset strategy table.
type EquityCurveRow struct {
	Time   time.Time `json:"timestamp"`
	Close  float64   `json:"close"`
	Return float64   `json:"return"`
	// Momentum is the trailing percentage change; None while the lookback is not filled.
	Momentum       optional.Option[float64] `json:"-"`
	Signal         int                      `json:"signal"`
	SignalLag      int                      `json:"signal_lag"`
	StrategyReturn float64                  `json:"strategy_return"`
	Equity         float64                  `json:"equity"`
}

// EquityCurveTable is the output of a single-asset strategy.
type EquityCurveTable struct {
	Symbol   string           `json:"symbol"`
	Strategy string           `json:"strategy"`
	Rows     []EquityCurveRow `json:"rows"`
}

// Times returns the row timestamps.
func (t EquityCurveTable) Times() []time.Time {
	times := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		times[i] = row.Time
	}

	return times
}

// Equity returns the equity column.
func (t EquityCurveTable) Equity() []float64 {
	equity := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		equity[i] = row.Equity
	}

	return equity
}

// Returns returns the column the strategy actually earned: the asset return for
// buy-and-hold, the signal-gated return otherwise.
func (t EquityCurveTable) Returns() []float64 {
	returns := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		returns[i] = row.StrategyReturn
	}

	return returns
}

// PortfolioRow is one period of a blended portfolio.
type PortfolioRow struct {
	Time        time.Time `json:"date"`
	PortReturn  float64   `json:"port_ret"`
	EquityCurve float64   `json:"equity_curve"`
}

// PortfolioTable is the output of the portfolio engine. Rows start at the second
// aligned timestamp because the first has no return.
type PortfolioTable struct {
	Weights WeightVector   `json:"weights"`
	Rows    []PortfolioRow `json:"rows"`
}

// Times returns the row timestamps.
func (t PortfolioTable) Times() []time.Time {
	times := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		times[i] = row.Time
	}

	return times
}

// Equity returns the equity curve column.
func (t PortfolioTable) Equity() []float64 {
	equity := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		equity[i] = row.EquityCurve
	}

	return equity
}

// Returns returns the portfolio return column.
func (t PortfolioTable) Returns() []float64 {
	returns := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		returns[i] = row.PortReturn
	}

	return returns
}

// CorrelationMatrix is a symmetric asset x asset matrix of Pearson correlations.
type CorrelationMatrix struct {
	Assets []string    `json:"assets"`
	Values [][]float64 `json:"values"`
}

// Get returns the correlation between two assets and false if either is unknown.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1

	for idx, asset := range m.Assets {
		if asset == a {
			i = idx
		}

		if asset == b {
			j = idx
		}
	}

	if i < 0 || j < 0 {
		return 0, false
	}

	return m.Values[i][j], true
}

// PortfolioRowName is the synthetic row of a VolatilityTable holding the portfolio volatility.
const PortfolioRowName = "PORTFOLIO"

// VolatilityEntry is one row of a VolatilityTable.
type VolatilityEntry struct {
	Asset      string  `json:"asset" yaml:"asset"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
}

// VolatilityTable lists annualized volatility per asset followed by the PORTFOLIO row.
type VolatilityTable struct {
	Entries []VolatilityEntry `json:"entries"`
}

// Get returns the volatility for an asset or PortfolioRowName.
func (t VolatilityTable) Get(asset string) (float64, bool) {
	for _, entry := range t.Entries {
		if entry.Asset == asset {
			return entry.Volatility, true
		}
	}

	return 0, false
}

// Portfolio returns the volatility of the weighted portfolio.
func (t VolatilityTable) Portfolio() float64 {
	vol, _ := t.Get(PortfolioRowName)

	return vol
}
