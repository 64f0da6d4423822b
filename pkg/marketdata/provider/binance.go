package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// binancePageSize is the default kline page size; a shorter page is the last one.
const binancePageSize = 500

// BinanceKlinesService is the subset of the kline service we use.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client we use.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (s *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient reads public klines from Binance. No API key is needed.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

func NewBinanceClient() (Provider, error) {
	return &BinanceClient{
		apiClient: &binanceAPIAdapter{client: binance.NewClient("", "")},
	}, nil
}

// NewBinanceClientWithAPI creates a BinanceClient around an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

// Candles pages through the klines of ticker between start and end.
func (c *BinanceClient) Candles(ctx context.Context, ticker string, interval Timespan, start, end time.Time) (types.PriceSeries, error) {
	binanceInterval, err := interval.BinanceInterval()
	if err != nil {
		return types.PriceSeries{}, err
	}

	// Binance API uses milliseconds for timestamps
	currentStartTime := start.UnixMilli()
	endTimeMillis := end.UnixMilli()

	var bars []types.MarketData

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(binanceInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from binance", ticker)
		}

		page, err := processKlines(ticker, klines)
		if err != nil {
			return types.PriceSeries{}, err
		}

		bars = append(bars, page...)

		if len(klines) < binancePageSize {
			break
		}

		// Continue after the close time of the last kline to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return types.PriceSeries{Symbol: ticker, Bars: bars}, nil
}

// Quote derives a quote from the last two daily klines.
func (c *BinanceClient) Quote(ctx context.Context, ticker string) (types.Quote, error) {
	end := time.Now().UTC()

	daily, err := c.Candles(ctx, ticker, TimespanOneDay, end.AddDate(0, 0, -2), end)
	if err != nil {
		return types.Quote{}, err
	}

	return QuoteFromBars(ticker, daily.Bars)
}

// processKlines converts Binance klines to MarketData, timestamped at the kline open.
func processKlines(ticker string, klines []*binance.Kline) ([]types.MarketData, error) {
	bars := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		var values [5]float64

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, ticker)
			}

			values[i] = v
		}

		bars = append(bars, types.MarketData{
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
