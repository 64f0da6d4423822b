package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/strategy"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/mocks"
	"github.com/stretchr/testify/suite"
)

type PerformanceTestSuite struct {
	suite.Suite
	start time.Time
}

func TestPerformanceSuite(t *testing.T) {
	suite.Run(t, new(PerformanceTestSuite))
}

func (suite *PerformanceTestSuite) SetupTest() {
	suite.start = time.Date(2024, 5, 6, 13, 30, 0, 0, time.UTC)
}

func (suite *PerformanceTestSuite) spaced(n int, step time.Duration) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = suite.start.Add(time.Duration(i) * step)
	}

	return times
}

func (suite *PerformanceTestSuite) TestInferPeriodsPerYearFallbacks() {
	suite.Equal(252.0, InferPeriodsPerYear(nil))
	suite.Equal(252.0, InferPeriodsPerYear(suite.spaced(2, time.Minute)))
	suite.Equal(252.0, InferPeriodsPerYear([]time.Time{suite.start, suite.start, suite.start}))
}

func (suite *PerformanceTestSuite) TestInferPeriodsPerYearIntraday() {
	// 5 minute bars: 78 bars per session
	suite.InDelta(252.0*78, InferPeriodsPerYear(suite.spaced(50, 5*time.Minute)), 1e-9)
	suite.InDelta(252.0*390, InferPeriodsPerYear(suite.spaced(10, time.Minute)), 1e-9)
}

func (suite *PerformanceTestSuite) TestInferPeriodsPerYearUsesMedianStep() {
	times := suite.spaced(6, 5*time.Minute)
	// an overnight gap does not move the median
	times = append(times, times[len(times)-1].Add(17*time.Hour))
	suite.InDelta(252.0*78, InferPeriodsPerYear(times), 1e-9)
}

func (suite *PerformanceTestSuite) TestTotalReturn() {
	suite.Equal(0.0, TotalReturn(nil))
	suite.Equal(0.0, TotalReturn([]float64{100}))
	suite.InDelta(0.5, TotalReturn([]float64{100, 120, 90, 150}), 1e-12)
}

func (suite *PerformanceTestSuite) TestMaxDrawdownScenario() {
	suite.InDelta(-0.25, MaxDrawdown([]float64{100, 120, 90, 150}), 1e-12)
	suite.Equal(0.0, MaxDrawdown([]float64{100, 101, 102}))
	suite.Equal(0.0, MaxDrawdown([]float64{100}))
}

func (suite *PerformanceTestSuite) TestAnnualizedVolatilityUsesPopulationStd() {
	// population std of {0.01, -0.01} is 0.01
	suite.InDelta(0.01*math.Sqrt(252), AnnualizedVolatility([]float64{0.01, -0.01}, 252), 1e-12)
	suite.Equal(0.0, AnnualizedVolatility([]float64{0.01}, 252))
	suite.Equal(0.0, AnnualizedVolatility([]float64{math.NaN(), 0.02}, 252))
}

func (suite *PerformanceTestSuite) TestSharpeRatio() {
	returns := []float64{0.02, 0.0, 0.01, -0.01}
	// mean 0.005, population std sqrt(0.000125)
	expected := 0.005 / math.Sqrt(0.000125) * math.Sqrt(252)
	suite.InDelta(expected, SharpeRatio(returns, 252, 0), 1e-9)

	// a positive risk-free rate lowers the ratio
	suite.Less(SharpeRatio(returns, 252, 0.05), expected)
}

func (suite *PerformanceTestSuite) TestSharpeRatioZeroVariance() {
	suite.Equal(0.0, SharpeRatio([]float64{0.01, 0.01, 0.01}, 252, 0))
	suite.Equal(0.0, SharpeRatio([]float64{0.01}, 252, 0))
}

func (suite *PerformanceTestSuite) TestComputeDegenerateTables() {
	empty := Compute(types.EquityCurveTable{})
	suite.Equal(types.MetricsBundle{PeriodsPerYear: 252}, empty)

	single := strategy.BuyAndHold(series.FromCloses("X", suite.spaced(1, time.Hour), []float64{10}), 100)
	suite.Equal(types.MetricsBundle{PeriodsPerYear: 252}, Compute(single))
}

func (suite *PerformanceTestSuite) TestComputeIsDeterministic() {
	gen := mocks.NewDataGenerator(99)
	config := mocks.DefaultConfig()
	config.Count = 500
	config.Interval = 5 * time.Minute
	prices := series.Normalize("TEST", gen.Generate(config))

	table, err := strategy.Momentum(prices, 20, 100)
	suite.Require().NoError(err)

	first := Compute(table)
	second := Compute(table)

	suite.Equal(math.Float64bits(first.Sharpe), math.Float64bits(second.Sharpe))
	suite.Equal(math.Float64bits(first.AnnualizedVolatility), math.Float64bits(second.AnnualizedVolatility))
	suite.Equal(first, second)
	suite.InDelta(252.0*78, first.PeriodsPerYear, 1e-9)
	suite.LessOrEqual(first.MaxDrawdown, 0.0)
}

func (suite *PerformanceTestSuite) TestComputeScenario() {
	times := suite.spaced(4, 5*time.Minute)
	table := strategy.BuyAndHold(series.FromCloses("X", times, []float64{100, 120, 90, 150}), 100)

	bundle := Compute(table)
	suite.InDelta(0.5, bundle.TotalReturn, 1e-12)
	suite.InDelta(-0.25, bundle.MaxDrawdown, 1e-12)
	suite.Greater(bundle.AnnualizedVolatility, 0.0)
}
