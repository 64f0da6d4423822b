package marketdata

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/mocks"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CachedProviderTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	now          time.Time
	cache        *CachedProvider
}

func TestCachedProviderSuite(t *testing.T) {
	suite.Run(t, new(CachedProviderTestSuite))
}

func (suite *CachedProviderTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.now = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	suite.cache = NewCachedProvider(suite.mockProvider, CachePolicy{TTL: time.Minute})
	suite.cache.now = func() time.Time { return suite.now }
}

func (suite *CachedProviderTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *CachedProviderTestSuite) TestDefaults() {
	cache := NewCachedProvider(suite.mockProvider, CachePolicy{})
	suite.Equal(DefaultCacheTTL, cache.policy.TTL)
	suite.NotNil(cache.policy.KeyedBy)
	suite.Equal(5*time.Minute, DefaultCachePolicy().TTL)
}

func (suite *CachedProviderTestSuite) TestCandlesHitWithinTTL() {
	start := suite.now.AddDate(0, 0, -5)
	prices := mocks.GenerateDaily("AAPL", 5)

	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", provider.TimespanOneDay, start, suite.now).
		Return(prices, nil).
		Times(1)

	for i := 0; i < 3; i++ {
		got, err := suite.cache.Candles(context.Background(), "AAPL", provider.TimespanOneDay, start, suite.now)
		suite.Require().NoError(err)
		suite.Equal(prices, got)
	}

	suite.Equal(1, suite.cache.Len())
}

func (suite *CachedProviderTestSuite) TestCandlesExpire() {
	start := suite.now.AddDate(0, 0, -5)

	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mocks.GenerateDaily("AAPL", 5), nil).
		Times(2)

	_, err := suite.cache.Candles(context.Background(), "AAPL", provider.TimespanOneDay, start, suite.now)
	suite.Require().NoError(err)

	suite.now = suite.now.Add(61 * time.Second)
	suite.Equal(0, suite.cache.Len())

	_, err = suite.cache.Candles(context.Background(), "AAPL", provider.TimespanOneDay, start, suite.now.Add(-61*time.Second))
	suite.Require().NoError(err)
}

func (suite *CachedProviderTestSuite) TestKeyIncludesSymbolAndInterval() {
	start := suite.now.AddDate(0, 0, -5)

	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mocks.GenerateDaily("X", 5), nil).
		Times(3)

	_, _ = suite.cache.Candles(context.Background(), "AAPL", provider.TimespanOneDay, start, suite.now)
	_, _ = suite.cache.Candles(context.Background(), "KO", provider.TimespanOneDay, start, suite.now)
	_, _ = suite.cache.Candles(context.Background(), "AAPL", provider.TimespanFiveMinutes, start, suite.now)

	suite.Equal(3, suite.cache.Len())
}

func (suite *CachedProviderTestSuite) TestDefaultKeyTruncatesToMinute() {
	a := DefaultCacheKey("candles", "AAPL", provider.TimespanOneDay, suite.now, suite.now.Add(10*time.Second))
	b := DefaultCacheKey("candles", "AAPL", provider.TimespanOneDay, suite.now, suite.now.Add(50*time.Second))
	c := DefaultCacheKey("candles", "AAPL", provider.TimespanOneDay, suite.now, suite.now.Add(70*time.Second))

	suite.Equal(a, b)
	suite.NotEqual(a, c)
}

func (suite *CachedProviderTestSuite) TestErrorsAreNotCached() {
	gomock.InOrder(
		suite.mockProvider.EXPECT().Quote(gomock.Any(), "KO").Return(types.Quote{}, stderrors.New("unavailable")),
		suite.mockProvider.EXPECT().Quote(gomock.Any(), "KO").Return(types.Quote{Symbol: "KO", Current: 61}, nil),
	)

	_, err := suite.cache.Quote(context.Background(), "KO")
	suite.Error(err)

	quote, err := suite.cache.Quote(context.Background(), "KO")
	suite.Require().NoError(err)
	suite.Equal(61.0, quote.Current)

	quote, err = suite.cache.Quote(context.Background(), "KO")
	suite.Require().NoError(err)
	suite.Equal(61.0, quote.Current)
}

func (suite *CachedProviderTestSuite) TestInvalidate() {
	suite.mockProvider.EXPECT().Quote(gomock.Any(), "KO").Return(types.Quote{Symbol: "KO"}, nil).Times(2)

	_, _ = suite.cache.Quote(context.Background(), "KO")
	suite.cache.Invalidate()
	suite.Equal(0, suite.cache.Len())
	_, _ = suite.cache.Quote(context.Background(), "KO")
}

func (suite *CachedProviderTestSuite) TestConcurrentAccess() {
	suite.mockProvider.EXPECT().Quote(gomock.Any(), "KO").Return(types.Quote{Symbol: "KO"}, nil).MinTimes(1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.cache.Quote(context.Background(), "KO")
			suite.NoError(err)
		}()
	}

	wg.Wait()
	suite.Equal(1, suite.cache.Len())
}
