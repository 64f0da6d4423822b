package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	dir   string
	store *DuckDBStore
	ctx   context.Context
	base  time.Time
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.ctx = context.Background()
	suite.base = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	store, err := NewDuckDBStore(filepath.Join(suite.dir, "candles.parquet"), logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

func (suite *DuckDBStoreTestSuite) bar(symbol string, day int, close float64) types.MarketData {
	return types.MarketData{
		Symbol: symbol,
		Time:   suite.base.AddDate(0, 0, day),
		Open:   close - 1,
		High:   close + 1,
		Low:    close - 2,
		Close:  close,
		Volume: 1000,
	}
}

func (suite *DuckDBStoreTestSuite) TestUpsertAndLoad() {
	n, err := suite.store.Upsert(suite.ctx, []types.MarketData{
		suite.bar("SPY", 1, 101),
		suite.bar("SPY", 0, 100),
		suite.bar("QQQ", 0, 300),
	})
	suite.Require().NoError(err)
	suite.Equal(3, n)

	prices, err := suite.store.Load(suite.ctx, "SPY", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal("SPY", prices.Symbol)
	suite.Require().Equal(2, prices.Len())
	suite.Equal([]float64{100, 101}, prices.Closes())
	suite.True(prices.Bars[0].Time.Equal(suite.base))
	suite.NotEmpty(prices.Bars[0].Id)
	suite.Equal(99.0, prices.Bars[0].Open)
	suite.NoError(prices.Validate())
}

func (suite *DuckDBStoreTestSuite) TestUpsertReplacesExistingBar() {
	_, err := suite.store.Upsert(suite.ctx, []types.MarketData{suite.bar("SPY", 0, 100)})
	suite.Require().NoError(err)

	_, err = suite.store.Upsert(suite.ctx, []types.MarketData{suite.bar("SPY", 0, 105)})
	suite.Require().NoError(err)

	prices, err := suite.store.Load(suite.ctx, "SPY", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{105}, prices.Closes())
}

func (suite *DuckDBStoreTestSuite) TestUpsertDeduplicatesWithinBatch() {
	n, err := suite.store.Upsert(suite.ctx, []types.MarketData{
		suite.bar("SPY", 0, 100),
		suite.bar("SPY", 0, 102),
	})
	suite.Require().NoError(err)
	suite.Equal(1, n)

	prices, err := suite.store.Load(suite.ctx, "SPY", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{102}, prices.Closes())
}

func (suite *DuckDBStoreTestSuite) TestUpsertEmpty() {
	n, err := suite.store.Upsert(suite.ctx, nil)
	suite.NoError(err)
	suite.Zero(n)
}

func (suite *DuckDBStoreTestSuite) TestLoadRange() {
	var bars []types.MarketData
	for day := 0; day < 10; day++ {
		bars = append(bars, suite.bar("SPY", day, 100+float64(day)))
	}

	_, err := suite.store.Upsert(suite.ctx, bars)
	suite.Require().NoError(err)

	prices, err := suite.store.Load(suite.ctx, "SPY", suite.base.AddDate(0, 0, 2), suite.base.AddDate(0, 0, 4))
	suite.Require().NoError(err)
	suite.Equal([]float64{102, 103, 104}, prices.Closes())

	prices, err = suite.store.Load(suite.ctx, "SPY", suite.base.AddDate(0, 0, 8), time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{108, 109}, prices.Closes())

	prices, err = suite.store.Load(suite.ctx, "MISSING", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Zero(prices.Len())
}

func (suite *DuckDBStoreTestSuite) TestSymbols() {
	_, err := suite.store.Upsert(suite.ctx, []types.MarketData{
		suite.bar("SPY", 0, 100),
		suite.bar("AGG", 0, 50),
		suite.bar("SPY", 1, 101),
	})
	suite.Require().NoError(err)

	symbols, err := suite.store.Symbols(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"AGG", "SPY"}, symbols)
}

func (suite *DuckDBStoreTestSuite) TestPersistsToParquet() {
	path := filepath.Join(suite.dir, "candles.parquet")

	_, err := suite.store.Upsert(suite.ctx, []types.MarketData{
		suite.bar("SPY", 0, 100),
		suite.bar("SPY", 1, 101),
	})
	suite.Require().NoError(err)

	_, err = os.Stat(path)
	suite.Require().NoError(err)

	reopened, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)

	defer reopened.Close()

	prices, err := reopened.Load(suite.ctx, "SPY", time.Time{}, time.Time{})
	suite.Require().NoError(err)
	suite.Equal([]float64{100, 101}, prices.Closes())
}

func (suite *DuckDBStoreTestSuite) TestInMemoryStore() {
	store, err := NewDuckDBStore("", nil)
	suite.Require().NoError(err)

	defer store.Close()

	_, err = store.Upsert(suite.ctx, []types.MarketData{suite.bar("SPY", 0, 100)})
	suite.Require().NoError(err)

	entries, err := os.ReadDir(suite.dir)
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *DuckDBStoreTestSuite) writeCSV(content string) string {
	path := filepath.Join(suite.dir, "prices.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *DuckDBStoreTestSuite) TestLoadCSV() {
	path := suite.writeCSV("Date,Open,Close\n2024-01-03,1,101.5\n2024-01-02,1,100.25\nbad-date,1,99\n2024-01-04,1,n/a\n2024-01-05,1,103\n")

	prices, err := suite.store.LoadCSV(suite.ctx, path, "SPY", series.TableOptions{TimeColumn: "date"})
	suite.Require().NoError(err)
	suite.Equal("SPY", prices.Symbol)
	suite.Equal([]float64{100.25, 101.5, 103}, prices.Closes())
	suite.True(prices.Bars[0].Time.Equal(suite.base))
	suite.NoError(prices.Validate())
}

func (suite *DuckDBStoreTestSuite) TestLoadCSVMissingColumn() {
	path := suite.writeCSV("timestamp,price\n2024-01-02,100\n")

	_, err := suite.store.LoadCSV(suite.ctx, path, "SPY", series.TableOptions{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingColumn))
}

func (suite *DuckDBStoreTestSuite) TestLoadCSVMissingFile() {
	_, err := suite.store.LoadCSV(suite.ctx, filepath.Join(suite.dir, "nope.csv"), "SPY", series.TableOptions{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSchema))
}
