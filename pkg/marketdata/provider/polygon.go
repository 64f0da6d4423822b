package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator we use.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client we use.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIAdapter struct {
	client *polygon.Client
}

func (a *polygonAPIAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonClient reads aggregates from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonClient{
		apiClient: &polygonAPIAdapter{client: polygon.New(apiKey)},
	}, nil
}

// NewPolygonClientWithAPI creates a PolygonClient around an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: apiClient}
}

// Candles lists the aggregates of ticker between start and end.
func (c *PolygonClient) Candles(ctx context.Context, ticker string, interval Timespan, start, end time.Time) (types.PriceSeries, error) {
	if _, err := ParseTimespan(string(interval)); err != nil {
		return types.PriceSeries{}, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: interval.Multiplier(),
		Timespan:   interval.Timespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	var bars []types.MarketData

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.MarketData{
			Symbol: ticker,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	return types.PriceSeries{Symbol: ticker, Bars: bars}, nil
}

// Quote derives a quote from the last week of daily aggregates.
func (c *PolygonClient) Quote(ctx context.Context, ticker string) (types.Quote, error) {
	end := time.Now().UTC()

	daily, err := c.Candles(ctx, ticker, TimespanOneDay, end.AddDate(0, 0, -7), end)
	if err != nil {
		return types.Quote{}, err
	}

	return QuoteFromBars(ticker, daily.Bars)
}
