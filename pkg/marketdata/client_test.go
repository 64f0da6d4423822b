package marketdata

import (
	"context"
	stderrors "errors"
	"io"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/mocks"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// ClientTestSuite is a test suite for the Client implementation
type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	mockStore    *mocks.MockCandleStore
	client       *Client
	start        time.Time
	end          time.Time
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// SetupTest runs before each test
func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.mockStore = mocks.NewMockCandleStore(suite.ctrl)
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.end = suite.start.AddDate(0, 0, 5)

	client, err := NewClient(suite.mockProvider, WithWriter(suite.mockStore), WithProgressWriter(io.Discard))
	suite.Require().NoError(err)
	suite.client = client
}

// TearDownTest runs after each test
func (suite *ClientTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ClientTestSuite) params(symbol string) FetchParams {
	return FetchParams{Symbol: symbol, Interval: provider.TimespanFiveMinutes, Start: suite.start, End: suite.end}
}

func (suite *ClientTestSuite) TestNewClientRequiresProvider() {
	client, err := NewClient(nil)
	suite.Nil(client)
	suite.Equal(errors.ErrCodeInvalidProvider, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestFetchSeriesNormalizes() {
	raw := []types.MarketData{
		{Symbol: "AAPL", Time: suite.start.Add(10 * time.Minute), Close: 102},
		{Symbol: "AAPL", Time: suite.start, Close: 100},
		{Symbol: "AAPL", Time: suite.start.Add(5 * time.Minute), Close: 101},
		{Symbol: "AAPL", Time: suite.start.Add(5 * time.Minute), Close: 101.5},
	}

	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", provider.TimespanFiveMinutes, suite.start, suite.end).
		Return(types.PriceSeries{Symbol: "AAPL", Bars: raw}, nil)

	prices, err := suite.client.FetchSeries(context.Background(), suite.params("AAPL"))
	suite.Require().NoError(err)

	suite.Equal([]float64{100, 101.5, 102}, prices.Closes())
	suite.NoError(prices.Validate())
}

func (suite *ClientTestSuite) TestFetchSeriesInvalidParams() {
	testCases := []struct {
		name   string
		params FetchParams
	}{
		{"missing symbol", FetchParams{Interval: provider.TimespanOneDay, Start: suite.start, End: suite.end}},
		{"missing interval", FetchParams{Symbol: "AAPL", Start: suite.start, End: suite.end}},
		{"end before start", FetchParams{Symbol: "AAPL", Interval: provider.TimespanOneDay, Start: suite.end, End: suite.start}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.client.FetchSeries(context.Background(), tc.params)
			suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestFetchSeriesEmpty() {
	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{Symbol: "AAPL"}, nil)

	_, err := suite.client.FetchSeries(context.Background(), suite.params("AAPL"))
	suite.Equal(errors.ErrCodeNoDataFound, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestFetchSeriesProviderError() {
	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "boom"))

	_, err := suite.client.FetchSeries(context.Background(), suite.params("AAPL"))
	suite.Equal(errors.ErrCodeMarketDataFetchFailed, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestFetchMany() {
	for _, symbol := range []string{"AAPL", "KO", "MSFT"} {
		suite.mockProvider.EXPECT().
			Candles(gomock.Any(), symbol, provider.TimespanOneDay, suite.start, suite.end).
			Return(mocks.GenerateDaily(symbol, 5), nil)
	}

	out, err := suite.client.FetchMany(context.Background(), []string{"AAPL", "KO", "MSFT"}, provider.TimespanOneDay, suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Len(out, 3)
	suite.Equal(5, out["KO"].Len())
}

func (suite *ClientTestSuite) TestFetchManyStopsOnFirstError() {
	gomock.InOrder(
		suite.mockProvider.EXPECT().
			Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(mocks.GenerateDaily("AAPL", 5), nil),
		suite.mockProvider.EXPECT().
			Candles(gomock.Any(), "KO", gomock.Any(), gomock.Any(), gomock.Any()).
			Return(types.PriceSeries{}, stderrors.New("timeout")),
	)

	_, err := suite.client.FetchMany(context.Background(), []string{"AAPL", "KO", "MSFT"}, provider.TimespanOneDay, suite.start, suite.end)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "failed to fetch KO")
}

func (suite *ClientTestSuite) TestFetchManyCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.client.FetchMany(ctx, []string{"AAPL"}, provider.TimespanOneDay, suite.start, suite.end)
	suite.ErrorIs(err, context.Canceled)
}

func (suite *ClientTestSuite) TestQuote() {
	suite.mockProvider.EXPECT().Quote(gomock.Any(), "KO").Return(types.Quote{Symbol: "KO", Current: 60}, nil)

	quote, err := suite.client.Quote(context.Background(), "KO")
	suite.Require().NoError(err)
	suite.Equal(60.0, quote.Current)

	_, err = suite.client.Quote(context.Background(), "")
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestDownload() {
	prices := mocks.GenerateDaily("AAPL", 4)

	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(prices, nil)
	suite.mockStore.EXPECT().Upsert(gomock.Any(), prices.Bars).Return(4, nil)

	written, err := suite.client.Download(context.Background(), suite.params("AAPL"))
	suite.Require().NoError(err)
	suite.Equal(4, written)
}

func (suite *ClientTestSuite) TestDownloadWriteError() {
	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mocks.GenerateDaily("AAPL", 4), nil)
	suite.mockStore.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(0, stderrors.New("disk full"))

	_, err := suite.client.Download(context.Background(), suite.params("AAPL"))
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestDownloadWithoutWriter() {
	client, err := NewClient(suite.mockProvider)
	suite.Require().NoError(err)

	_, err = client.Download(context.Background(), suite.params("AAPL"))
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
}
