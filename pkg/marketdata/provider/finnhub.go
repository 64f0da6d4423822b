package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DefaultFinnhubBaseURL is the Finnhub REST endpoint.
const DefaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient reads quotes and candles from Finnhub.
type FinnhubClient struct {
	apiKey   string
	settings httpSettings
}

// NewFinnhubClient creates a Finnhub provider. The API key is required.
func NewFinnhubClient(apiKey string, opts ...HTTPOption) (*FinnhubClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "finnhub api key is required")
	}

	return &FinnhubClient{
		apiKey:   apiKey,
		settings: newHTTPSettings(DefaultFinnhubBaseURL, opts),
	}, nil
}

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type finnhubCandles struct {
	Status    string    `json:"s"`
	Timestamp []int64   `json:"t"`
	Open      []float64 `json:"o"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Close     []float64 `json:"c"`
	Volume    []float64 `json:"v"`
}

// Quote returns the latest quote. Finnhub answers unknown symbols with an all-zero payload.
func (c *FinnhubClient) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("token", c.apiKey)

	var payload finnhubQuote
	if err := getJSON(ctx, c.settings.client, c.settings.baseURL+"/quote?"+query.Encode(), &payload); err != nil {
		return types.Quote{}, errors.Wrapf(errors.GetCode(err), err, "finnhub quote for %s failed", symbol)
	}

	if payload.Current == 0 && payload.Timestamp == 0 {
		return types.Quote{}, errors.Newf(errors.ErrCodeNoDataFound, "finnhub has no quote for %s", symbol)
	}

	return types.Quote{
		Symbol:        symbol,
		Time:          time.Unix(payload.Timestamp, 0).UTC(),
		Current:       payload.Current,
		Change:        payload.Change,
		PercentChange: payload.PercentChange,
		High:          payload.High,
		Low:           payload.Low,
		Open:          payload.Open,
		PreviousClose: payload.PreviousClose,
	}, nil
}

// Candles fetches bars between start and end.
func (c *FinnhubClient) Candles(ctx context.Context, symbol string, interval Timespan, start, end time.Time) (types.PriceSeries, error) {
	resolution, err := interval.FinnhubResolution()
	if err != nil {
		return types.PriceSeries{}, err
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("resolution", resolution)
	query.Set("from", fmt.Sprint(start.Unix()))
	query.Set("to", fmt.Sprint(end.Unix()))
	query.Set("token", c.apiKey)

	var payload finnhubCandles
	if err := getJSON(ctx, c.settings.client, c.settings.baseURL+"/stock/candle?"+query.Encode(), &payload); err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.GetCode(err), err, "finnhub candles for %s failed", symbol)
	}

	if payload.Status != "ok" {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeNoDataFound, "finnhub candle api returned s=%q for %s", payload.Status, symbol)
	}

	n := len(payload.Timestamp)
	if len(payload.Close) != n || len(payload.Open) != n || len(payload.High) != n || len(payload.Low) != n {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "finnhub candle arrays for %s have mismatched lengths", symbol)
	}

	bars := make([]types.MarketData, n)
	for i := range payload.Timestamp {
		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   time.Unix(payload.Timestamp[i], 0).UTC(),
			Open:   payload.Open[i],
			High:   payload.High[i],
			Low:    payload.Low[i],
			Close:  payload.Close[i],
		}

		if i < len(payload.Volume) {
			bars[i].Volume = payload.Volume[i]
		}
	}

	return types.PriceSeries{Symbol: symbol, Bars: bars}, nil
}
