package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderFinnhub ProviderType = "finnhub"
)

// Provider fetches candles and quotes for one symbol at a time.
type Provider interface {
	// Candles returns the bars of symbol at the given interval between start and end.
	// The result is in provider order and may contain duplicates; callers normalize it.
	// example:
	// Candles(ctx, "AAPL", TimespanFiveMinutes, time.Now().AddDate(0, 0, -5), time.Now())
	Candles(ctx context.Context, symbol string, interval Timespan, start, end time.Time) (types.PriceSeries, error)
	// Quote returns the latest price snapshot of symbol.
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

// Config selects and configures a provider.
type Config struct {
	Type ProviderType `yaml:"type" json:"type" jsonschema:"title=Provider,enum=yahoo,enum=polygon,enum=binance,enum=finnhub,default=yahoo" validate:"required,oneof=yahoo polygon binance finnhub"`
	// APIKey is required by polygon and finnhub.
	APIKey string `yaml:"api_key" json:"api_key,omitempty" jsonschema:"title=API Key" validate:"required_if=Type polygon,required_if=Type finnhub"`
	// BaseURL overrides the REST endpoint of the HTTP based providers.
	BaseURL string `yaml:"base_url" json:"base_url,omitempty" jsonschema:"title=Base URL,format=uri" validate:"omitempty,url"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `yaml:"timeout" json:"timeout,omitempty" jsonschema:"title=Request Timeout"`
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(config Config) (Provider, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid provider configuration", err)
	}

	var opts []HTTPOption
	if config.BaseURL != "" {
		opts = append(opts, WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: config.Timeout}))
	}

	switch config.Type {
	case ProviderYahoo:
		return NewYahooClient(opts...), nil
	case ProviderPolygon:
		return NewPolygonClient(config.APIKey)
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderFinnhub:
		client, err := NewFinnhubClient(config.APIKey, opts...)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

// QuoteFromBars derives a quote from the two most recent bars of a daily series.
func QuoteFromBars(symbol string, bars []types.MarketData) (types.Quote, error) {
	if len(bars) == 0 {
		return types.Quote{}, errors.Newf(errors.ErrCodeNoDataFound, "no recent bars for %s", symbol)
	}

	last := bars[len(bars)-1]

	previous := last.Open
	if len(bars) > 1 {
		previous = bars[len(bars)-2].Close
	}

	quote := types.Quote{
		Symbol:        symbol,
		Time:          last.Time,
		Current:       last.Close,
		Change:        last.Close - previous,
		High:          last.High,
		Low:           last.Low,
		Open:          last.Open,
		PreviousClose: previous,
	}

	if previous != 0 {
		quote.PercentChange = quote.Change / previous * 100
	}

	return quote, nil
}
