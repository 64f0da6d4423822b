package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

type TypesTestSuite struct {
	suite.Suite
	base time.Time
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) SetupTest() {
	suite.base = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *TypesTestSuite) series(closes ...float64) PriceSeries {
	bars := make([]MarketData, len(closes))
	for i, c := range closes {
		bars[i] = MarketData{Symbol: "SPY", Time: suite.base.AddDate(0, 0, i), Close: c}
	}

	return PriceSeries{Symbol: "SPY", Bars: bars}
}

func (suite *TypesTestSuite) TestPriceSeriesAccessors() {
	s := suite.series(100, 101, 99)

	suite.Equal(3, s.Len())
	suite.Equal([]float64{100, 101, 99}, s.Closes())
	suite.Equal(suite.base.AddDate(0, 0, 2), s.Times()[2])

	last, ok := s.Last()
	suite.True(ok)
	suite.Equal(99.0, last.Close)

	_, ok = PriceSeries{}.Last()
	suite.False(ok)
}

func (suite *TypesTestSuite) TestPriceSeriesValidate() {
	suite.NoError(suite.series(1, 2, 3).Validate())
	suite.NoError(PriceSeries{}.Validate())

	s := suite.series(1, 2, 3)
	s.Bars[2].Time = s.Bars[1].Time

	err := s.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnorderedSeries))
	suite.Contains(err.Error(), "index 2")
}

func (suite *TypesTestSuite) TestEquityCurveColumns() {
	table := EquityCurveTable{Rows: []EquityCurveRow{
		{Time: suite.base, Equity: 100, StrategyReturn: 0},
		{Time: suite.base.AddDate(0, 0, 1), Equity: 110, StrategyReturn: 0.1},
	}}

	suite.Equal([]float64{100, 110}, table.Equity())
	suite.Equal([]float64{0, 0.1}, table.Returns())
	suite.Len(table.Times(), 2)
}

func (suite *TypesTestSuite) TestCorrelationMatrixGet() {
	m := CorrelationMatrix{
		Assets: []string{"A", "B"},
		Values: [][]float64{{1, 0.3}, {0.3, 1}},
	}

	v, ok := m.Get("B", "A")
	suite.True(ok)
	suite.Equal(0.3, v)

	_, ok = m.Get("A", "C")
	suite.False(ok)
}

func (suite *TypesTestSuite) TestVolatilityTable() {
	table := VolatilityTable{Entries: []VolatilityEntry{
		{Asset: "A", Volatility: 0.2},
		{Asset: PortfolioRowName, Volatility: 0.15},
	}}

	suite.Equal(0.15, table.Portfolio())

	_, ok := table.Get("B")
	suite.False(ok)
	suite.Equal(0.0, VolatilityTable{}.Portfolio())
}

func (suite *TypesTestSuite) TestWeightVector() {
	w := WeightVector{"MSFT": 0.6, "AAPL": 0.4}

	suite.Equal([]string{"AAPL", "MSFT"}, w.Assets())
	suite.InDelta(1.0, w.Sum(), 1e-12)
}

func (suite *TypesTestSuite) TestParseWeightVector() {
	w, err := ParseWeightVector(" AAPL:0.4, MSFT : 0.6 ,")
	suite.Require().NoError(err)
	suite.Equal(WeightVector{"AAPL": 0.4, "MSFT": 0.6}, w)

	for _, raw := range []string{"AAPL", ":0.5", "AAPL:abc"} {
		_, err := ParseWeightVector(raw)
		suite.Error(err, raw)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidWeights), raw)
	}
}

func (suite *TypesTestSuite) TestForecastAsOf() {
	r := ForecastResult{AsOfDate: time.Date(2024, 3, 8, 21, 0, 0, 0, time.UTC)}
	suite.Equal("2024-03-08", r.AsOf())
}

func (suite *TypesTestSuite) TestWriteStrategyStats() {
	path := filepath.Join(suite.T().TempDir(), "stats.yaml")
	stats := []StrategyStats{{
		Symbol:   "SPY",
		Strategy: "momentum",
		Start:    suite.base,
		End:      suite.base.AddDate(0, 1, 0),
		Bars:     22,
		Metrics:  MetricsBundle{TotalReturn: 0.05, MaxDrawdown: -0.02, PeriodsPerYear: 252},
	}}

	suite.Require().NoError(WriteStrategyStats(path, stats))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(data), "total_return: 0.05")

	var loaded []StrategyStats
	suite.Require().NoError(yaml.Unmarshal(data, &loaded))
	suite.Equal(stats[0].Metrics, loaded[0].Metrics)
	suite.Equal(22, loaded[0].Bars)
}

func (suite *TypesTestSuite) TestWriteStrategyStatsBadPath() {
	err := WriteStrategyStats(filepath.Join(suite.T().TempDir(), "missing", "stats.yaml"), nil)
	suite.Error(err)
}
