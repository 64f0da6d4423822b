package provider

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient reads the Yahoo Finance v8 chart API. No API key is needed.
type YahooClient struct {
	settings httpSettings
}

// NewYahooClient creates a Yahoo Finance provider.
func NewYahooClient(opts ...HTTPOption) *YahooClient {
	return &YahooClient{settings: newHTTPSettings(DefaultYahooBaseURL, opts)}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				RegularMarketHigh  float64 `json:"regularMarketDayHigh"`
				RegularMarketLow   float64 `json:"regularMarketDayLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles fetches bars between start and end. Bars without a close are skipped.
func (c *YahooClient) Candles(ctx context.Context, symbol string, interval Timespan, start, end time.Time) (types.PriceSeries, error) {
	yahooInterval, err := interval.YahooInterval()
	if err != nil {
		return types.PriceSeries{}, err
	}

	query := url.Values{}
	query.Set("interval", yahooInterval)
	query.Set("period1", fmt.Sprint(start.Unix()))
	query.Set("period2", fmt.Sprint(end.Unix()))
	query.Set("includePrePost", "false")

	chart, err := c.fetchChart(ctx, symbol, query)
	if err != nil {
		return types.PriceSeries{}, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeEmptyPayload, "yahoo returned no quotes for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]types.MarketData, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		closePrice := value(quote.Close, i)
		if math.IsNaN(closePrice) {
			continue
		}

		bars = append(bars, types.MarketData{
			Symbol: symbol,
			Time:   time.Unix(ts, 0).UTC(),
			Open:   value(quote.Open, i),
			High:   value(quote.High, i),
			Low:    value(quote.Low, i),
			Close:  closePrice,
			Volume: zeroIfNaN(value(quote.Volume, i)),
		})
	}

	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// Quote returns the regular market price from the chart metadata.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("range", "5d")

	chart, err := c.fetchChart(ctx, symbol, query)
	if err != nil {
		return types.Quote{}, err
	}

	result := chart.Chart.Result[0]
	meta := result.Meta

	quote := types.Quote{
		Symbol:        symbol,
		Time:          time.Unix(meta.RegularMarketTime, 0).UTC(),
		Current:       meta.RegularMarketPrice,
		High:          meta.RegularMarketHigh,
		Low:           meta.RegularMarketLow,
		PreviousClose: meta.ChartPreviousClose,
		Change:        meta.RegularMarketPrice - meta.ChartPreviousClose,
	}

	if n := len(result.Timestamp); n > 0 && len(result.Indicators.Quote) > 0 {
		quote.Open = zeroIfNaN(value(result.Indicators.Quote[0].Open, n-1))
	}

	if meta.ChartPreviousClose != 0 {
		quote.PercentChange = quote.Change / meta.ChartPreviousClose * 100
	}

	return quote, nil
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol string, query url.Values) (yahooChart, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.settings.baseURL, url.PathEscape(symbol), query.Encode())

	var chart yahooChart
	if err := getJSON(ctx, c.settings.client, endpoint, &chart); err != nil {
		return yahooChart{}, errors.Wrapf(errors.GetCode(err), err, "yahoo chart request for %s failed", symbol)
	}

	if chart.Chart.Error != nil {
		return yahooChart{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return yahooChart{}, errors.Newf(errors.ErrCodeEmptyPayload, "yahoo returned no result for %s", symbol)
	}

	return chart, nil
}

func value(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}

	return *values[i]
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return v
}
