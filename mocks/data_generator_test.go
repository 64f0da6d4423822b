package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerateShape() {
	config := DefaultConfig()
	config.Count = 200

	data := NewDataGenerator(42).Generate(config)
	suite.Require().Len(data, 200)

	for i, bar := range data {
		suite.Equal(config.Symbol, bar.Symbol)
		suite.Equal(config.StartTime.Add(time.Duration(i)*config.Interval), bar.Time)
		suite.Greater(bar.Low, 0.0)
		suite.GreaterOrEqual(bar.High, bar.Open)
		suite.GreaterOrEqual(bar.High, bar.Close)
		suite.LessOrEqual(bar.Low, bar.Open)
		suite.LessOrEqual(bar.Low, bar.Close)
		suite.Greater(bar.Volume, 0.0)
	}
}

func (suite *DataGeneratorTestSuite) TestBarsOpenAtPreviousClose() {
	data := NewDataGenerator(1).Generate(DefaultConfig())

	suite.Equal(DefaultConfig().InitialPrice, data[0].Open)

	for i := 1; i < len(data); i++ {
		suite.Equal(data[i-1].Close, data[i].Open, "bar %d", i)
	}
}

func (suite *DataGeneratorTestSuite) TestSeedIsReproducible() {
	config := DefaultConfig()

	suite.Equal(NewDataGenerator(5).Generate(config), NewDataGenerator(5).Generate(config))
	suite.NotEqual(NewDataGenerator(5).Generate(config), NewDataGenerator(6).Generate(config))
}

func (suite *DataGeneratorTestSuite) TestGenerateDaily() {
	prices := GenerateDaily("KO", 30)

	suite.Equal("KO", prices.Symbol)
	suite.Require().Equal(30, prices.Len())
	suite.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), prices.Bars[0].Time)
	suite.Equal(24*time.Hour, prices.Bars[1].Time.Sub(prices.Bars[0].Time))
	suite.NoError(prices.Validate())
	suite.Equal(prices, GenerateDaily("KO", 30))
}

func (suite *DataGeneratorTestSuite) TestGenerateUniverseSharesTimeGrid() {
	universe := NewDataGenerator(3).GenerateUniverse([]string{"AAPL", "MSFT", "KO"}, DailyConfig("", 20))

	suite.Require().Len(universe, 3)

	times := universe["AAPL"].Times()
	for symbol, prices := range universe {
		suite.Equal(symbol, prices.Symbol)
		suite.Equal(times, prices.Times())
	}

	suite.NotEqual(universe["AAPL"].Closes(), universe["MSFT"].Closes())
}

func (suite *DataGeneratorTestSuite) TestZeroCount() {
	config := DefaultConfig()
	config.Count = 0

	suite.Empty(NewDataGenerator(1).Generate(config))
}
