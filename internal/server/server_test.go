package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/mocks"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	server       *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)

	client, err := marketdata.NewClient(suite.mockProvider, marketdata.WithProgressWriter(io.Discard))
	suite.Require().NoError(err)

	cfg := config.Default()
	cfg.Assets = []string{"SPY", "AGG"}
	cfg.Weights = types.WeightVector{"SPY": 3, "AGG": 1}

	suite.server = New(client, cfg, nil)
	suite.server.now = func() time.Time { return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) }
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ServerTestSuite) get(path string, out any) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()

	suite.server.Handler().ServeHTTP(rec, req)
	suite.Equal("application/json", rec.Header().Get("Content-Type"))

	if out != nil {
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
	}

	return rec.Code
}

func (suite *ServerTestSuite) expectCandles(symbol string, interval provider.Timespan, prices types.PriceSeries) {
	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), symbol, interval, gomock.Any(), gomock.Any()).
		Return(prices, nil)
}

func (suite *ServerTestSuite) TestHealth() {
	var body map[string]string
	suite.Equal(http.StatusOK, suite.get("/healthz", &body))
	suite.Equal("ok", body["status"])
}

func (suite *ServerTestSuite) TestStrategyBuyAndHold() {
	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 50))

	var body StrategyResponse
	suite.Equal(http.StatusOK, suite.get("/api/strategy/SPY", &body))
	suite.Equal("SPY", body.Symbol)
	suite.Equal("buy_and_hold", body.Strategy)
	suite.Len(body.Rows, 50)
	suite.Equal(100.0, body.Rows[0].Equity)
	suite.InDelta(68.25, body.Metrics.PeriodsPerYear, 1e-9)
}

func (suite *ServerTestSuite) TestStrategyMomentum() {
	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 50))

	var body StrategyResponse
	suite.Equal(http.StatusOK, suite.get("/api/strategy/SPY?strategy=momentum&lookback=5", &body))
	suite.Equal("momentum", body.Strategy)
	suite.Require().Len(body.Rows, 50)
	suite.Nil(body.Rows[4].Momentum)
	suite.NotNil(body.Rows[5].Momentum)
	suite.Zero(body.Rows[5].SignalLag)
}

func (suite *ServerTestSuite) TestStrategyBadRequests() {
	var body ErrorResponse

	suite.Equal(http.StatusBadRequest, suite.get("/api/strategy/SPY?interval=7m", &body))
	suite.Equal(int(errors.ErrCodeInvalidTimespan), body.Code)
	suite.Equal(string(errors.CategoryMarketData), body.Category)

	suite.Equal(http.StatusBadRequest, suite.get("/api/strategy/SPY?days=-3", &body))
	suite.Equal(http.StatusBadRequest, suite.get("/api/strategy/SPY?lookback=zero", &body))

	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 10))
	suite.Equal(http.StatusBadRequest, suite.get("/api/strategy/SPY?strategy=martingale", &body))
	suite.Contains(body.Error, "martingale")
}

func (suite *ServerTestSuite) TestStrategyNoData() {
	suite.expectCandles("SPY", provider.TimespanOneDay, types.PriceSeries{Symbol: "SPY"})

	var body ErrorResponse
	suite.Equal(http.StatusNotFound, suite.get("/api/strategy/SPY", &body))
	suite.Equal(int(errors.ErrCodeNoDataFound), body.Code)
}

func (suite *ServerTestSuite) TestPortfolioUsesConfiguredWeights() {
	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 40))
	suite.expectCandles("AGG", provider.TimespanOneDay, mocks.GenerateDaily("AGG", 40))

	var body PortfolioResponse
	suite.Equal(http.StatusOK, suite.get("/api/portfolio", &body))
	suite.InDelta(0.75, body.Weights["SPY"], 1e-12)
	suite.InDelta(0.25, body.Weights["AGG"], 1e-12)
	suite.Len(body.Rows, 39)
	suite.Equal([]string{"AGG", "SPY"}, body.Correlation.Assets)
	suite.Len(body.Volatility.Entries, 3)
}

func (suite *ServerTestSuite) TestPortfolioQueryWeights() {
	suite.expectCandles("QQQ", provider.TimespanOneDay, mocks.GenerateDaily("QQQ", 40))
	suite.expectCandles("TLT", provider.TimespanOneDay, mocks.GenerateDaily("TLT", 40))

	var body PortfolioResponse
	suite.Equal(http.StatusOK, suite.get("/api/portfolio?assets=QQQ,TLT&weights=QQQ:0,TLT:0", &body))
	suite.InDelta(0.5, body.Weights["QQQ"], 1e-12)
	suite.InDelta(0.5, body.Weights["TLT"], 1e-12)
}

func (suite *ServerTestSuite) TestPortfolioInvalidWeights() {
	var body ErrorResponse
	suite.Equal(http.StatusBadRequest, suite.get("/api/portfolio?weights=SPY", &body))
	suite.Equal(int(errors.ErrCodeInvalidWeights), body.Code)

	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 40))
	suite.expectCandles("AGG", provider.TimespanOneDay, mocks.GenerateDaily("AGG", 40))
	suite.Equal(http.StatusBadRequest, suite.get("/api/portfolio?weights=SPY:-1,AGG:1", &body))
	suite.Equal(int(errors.ErrCodeInvalidWeights), body.Code)
}

func (suite *ServerTestSuite) TestPortfolioFetchFailure() {
	suite.mockProvider.EXPECT().
		Candles(gomock.Any(), "SPY", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "upstream down"))

	var body ErrorResponse
	suite.Equal(http.StatusBadGateway, suite.get("/api/portfolio", &body))
	suite.Contains(body.Error, "upstream down")
}

func (suite *ServerTestSuite) TestForecast() {
	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 300))

	var body ForecastResponse
	suite.Equal(http.StatusOK, suite.get("/api/forecast/SPY?alpha=0.1", &body))
	suite.Equal("SPY", body.Symbol)
	suite.Equal(0.1, body.Alpha)
	suite.Equal(288, body.NTrain)
	suite.Less(body.LowerClose, body.PredClose)
	suite.Less(body.PredClose, body.UpperClose)
	suite.NotNil(body.ModelR2)
}

func (suite *ServerTestSuite) TestForecastIntraday() {
	cfg := mocks.DailyConfig("SPY", 600)
	cfg.Interval = 12 * time.Hour
	prices := mocks.NewDataGenerator(7).GenerateSeries(cfg)

	suite.expectCandles("SPY", provider.TimespanOneHour, prices)

	var body ForecastResponse
	suite.Equal(http.StatusOK, suite.get("/api/forecast/SPY?interval=1h", &body))
	suite.Equal("SPY", body.Symbol)
	suite.Positive(body.NTrain)
}

func (suite *ServerTestSuite) TestForecastInsufficientData() {
	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 20))

	var body ErrorResponse
	suite.Equal(http.StatusUnprocessableEntity, suite.get("/api/forecast/SPY", &body))
	suite.Equal(int(errors.ErrCodeInsufficientDailyPoints), body.Code)
	suite.Equal(string(errors.CategoryData), body.Category)
}

func (suite *ServerTestSuite) TestForecastInvalidAlpha() {
	var body ErrorResponse
	suite.Equal(http.StatusBadRequest, suite.get("/api/forecast/SPY?alpha=abc", &body))

	suite.expectCandles("SPY", provider.TimespanOneDay, mocks.GenerateDaily("SPY", 300))
	suite.Equal(http.StatusBadRequest, suite.get("/api/forecast/SPY?alpha=2", &body))
	suite.Equal(int(errors.ErrCodeInvalidConfiguration), body.Code)
}

func (suite *ServerTestSuite) TestQuote() {
	suite.mockProvider.EXPECT().Quote(gomock.Any(), "SPY").Return(types.Quote{Symbol: "SPY", Current: 501.5}, nil)

	var body types.Quote
	suite.Equal(http.StatusOK, suite.get("/api/quote/SPY", &body))
	suite.Equal(501.5, body.Current)
}

func (suite *ServerTestSuite) TestStartStop() {
	suite.Require().NoError(suite.server.Start("127.0.0.1:0"))
	suite.NotEmpty(suite.server.Address())

	resp, err := http.Get("http://" + suite.server.Address() + "/healthz")
	suite.Require().NoError(err)
	resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	suite.NoError(suite.server.Stop(ctx))
}
