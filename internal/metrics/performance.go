// Package metrics computes return, volatility, Sharpe and drawdown statistics
// for an equity curve and its period returns.
package metrics

import (
	"math"
	"slices"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear is the fallback compounding frequency (daily bars).
	TradingDaysPerYear = 252.0
	// tradingSecondsPerDay assumes a 6.5 hour US equity session.
	tradingSecondsPerDay = 390 * 60
)

// Table is anything exposing aligned timestamp, equity and return columns, such
// as types.EquityCurveTable or types.PortfolioTable.
type Table interface {
	Times() []time.Time
	Equity() []float64
	Returns() []float64
}

// InferPeriodsPerYear derives the compounding frequency from the median spacing
// of the timestamps: 252 * (trading seconds per day / median step). Fewer than
// three timestamps or a non-positive span fall back to 252.
func InferPeriodsPerYear(times []time.Time) float64 {
	if len(times) < 3 {
		return TradingDaysPerYear
	}

	sorted := slices.Clone(times)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	if !sorted[len(sorted)-1].After(sorted[0]) {
		return TradingDaysPerYear
	}

	steps := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		steps[i-1] = sorted[i].Sub(sorted[i-1]).Seconds()
	}

	step := median(steps)
	if step <= 0 {
		return TradingDaysPerYear
	}

	return TradingDaysPerYear * (tradingSecondsPerDay / step)
}

// TotalReturn is equity_last / equity_first - 1, or 0 for fewer than two points.
func TotalReturn(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	return equity[len(equity)-1]/equity[0] - 1
}

// AnnualizedVolatility is the population standard deviation of the finite returns
// scaled by sqrt(periodsPerYear), or 0 for fewer than two returns.
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	r := dropNaN(returns)
	if len(r) < 2 {
		return 0
	}

	_, std := stat.PopMeanStdDev(r, nil)

	return std * math.Sqrt(periodsPerYear)
}

// SharpeRatio is mean(excess)/std(excess) * sqrt(periodsPerYear), where the
// per-period risk-free rate is the compound equivalent of riskFreeRate (annual).
// It is 0 for fewer than two returns or when the excess returns have zero
// variance.
func SharpeRatio(returns []float64, periodsPerYear, riskFreeRate float64) float64 {
	r := dropNaN(returns)
	if len(r) < 2 {
		return 0
	}

	rfPerPeriod := math.Pow(1+riskFreeRate, 1/periodsPerYear) - 1

	excess := make([]float64, len(r))
	copy(excess, r)
	floats.AddConst(-rfPerPeriod, excess)

	mean, std := stat.PopMeanStdDev(excess, nil)
	if std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(periodsPerYear)
}

// MaxDrawdown is min(equity / running max - 1): 0 or negative, e.g. -0.25 for a
// 25% peak-to-trough loss. Fewer than two points yield 0.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	peak := equity[0]
	worst := 0.0

	for _, v := range equity {
		if v > peak {
			peak = v
		}

		if dd := v/peak - 1; dd < worst {
			worst = dd
		}
	}

	return worst
}

// Compute summarizes a table with a zero risk-free rate.
func Compute(table Table) types.MetricsBundle {
	return ComputeWithRiskFree(table, 0)
}

// ComputeWithRiskFree summarizes a table given an annual risk-free rate.
func ComputeWithRiskFree(table Table, riskFreeRate float64) types.MetricsBundle {
	ppy := InferPeriodsPerYear(table.Times())
	equity := table.Equity()
	returns := table.Returns()

	return types.MetricsBundle{
		TotalReturn:          TotalReturn(equity),
		AnnualizedVolatility: AnnualizedVolatility(returns, ppy),
		Sharpe:               SharpeRatio(returns, ppy, riskFreeRate),
		MaxDrawdown:          MaxDrawdown(equity),
		PeriodsPerYear:       ppy,
	}
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}

// median averages the two middle values for an even count.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}
