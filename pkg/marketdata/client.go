package marketdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// CandleWriter persists bars. internal/store.DuckDBStore implements it.
type CandleWriter interface {
	Upsert(ctx context.Context, bars []types.MarketData) (int, error)
}

// FetchParams holds the parameters for a market data request.
type FetchParams struct {
	Symbol   string            `validate:"required"`
	Interval provider.Timespan `validate:"required"`
	Start    time.Time         `validate:"required"`
	End      time.Time         `validate:"required,gtfield=Start"`
}

// Client fetches canonical price series from an injected provider and
// optionally persists them.
type Client struct {
	provider       provider.Provider
	writer         CandleWriter
	logger         *logger.Logger
	validate       *validator.Validate
	progressWriter io.Writer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithWriter enables Download.
func WithWriter(w CandleWriter) ClientOption {
	return func(c *Client) {
		c.writer = w
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l.Component("marketdata")
	}
}

// WithProgressWriter redirects the FetchMany progress bar, e.g. to io.Discard.
func WithProgressWriter(w io.Writer) ClientOption {
	return func(c *Client) {
		c.progressWriter = w
	}
}

// NewClient creates a new market data client around p.
func NewClient(p provider.Provider, opts ...ClientOption) (*Client, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "market data provider is required")
	}

	c := &Client{
		provider:       p,
		logger:         logger.NewNopLogger(),
		validate:       validator.New(),
		progressWriter: os.Stderr,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// FetchSeries fetches one symbol and returns it sorted, deduplicated and
// cleaned of missing closes. An empty result is a no-data error.
func (c *Client) FetchSeries(ctx context.Context, params FetchParams) (types.PriceSeries, error) {
	if err := c.validate.Struct(params); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid fetch parameters", err)
	}

	raw, err := c.provider.Candles(ctx, params.Symbol, params.Interval, params.Start, params.End)
	if err != nil {
		c.logger.Warn("fetch failed",
			zap.String("symbol", params.Symbol),
			zap.String("interval", string(params.Interval)),
			zap.Error(err),
		)

		return types.PriceSeries{}, err
	}

	prices := series.Normalize(params.Symbol, raw.Bars)
	if prices.Len() == 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeNoDataFound, "no data returned for %s", params.Symbol)
	}

	c.logger.Debug("fetched series",
		zap.String("symbol", params.Symbol),
		zap.Int("raw", len(raw.Bars)),
		zap.Int("bars", prices.Len()),
	)

	return prices, nil
}

// FetchMany fetches several symbols over the same range, one after another.
// The first failure aborts the batch.
func (c *Client) FetchMany(ctx context.Context, symbols []string, interval provider.Timespan, start, end time.Time) (map[string]types.PriceSeries, error) {
	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(c.progressWriter),
	)

	out := make(map[string]types.PriceSeries, len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bar.Describe(fmt.Sprintf("Fetching %s", symbol))

		prices, err := c.FetchSeries(ctx, FetchParams{Symbol: symbol, Interval: interval, Start: start, End: end})
		if err != nil {
			return nil, errors.Wrapf(errors.GetCode(err), err, "failed to fetch %s", symbol)
		}

		out[symbol] = prices

		_ = bar.Add(1)
	}

	_ = bar.Finish()

	return out, nil
}

// Quote returns the latest quote of symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	if symbol == "" {
		return types.Quote{}, errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	return c.provider.Quote(ctx, symbol)
}

// Download fetches one symbol and persists it through the configured writer.
// It returns the number of bars written.
func (c *Client) Download(ctx context.Context, params FetchParams) (int, error) {
	if c.writer == nil {
		return 0, errors.New(errors.ErrCodeInvalidConfiguration, "no writer configured for download")
	}

	prices, err := c.FetchSeries(ctx, params)
	if err != nil {
		return 0, err
	}

	written, err := c.writer.Upsert(ctx, prices.Bars)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to store %s", params.Symbol)
	}

	c.logger.Info("downloaded market data",
		zap.String("symbol", params.Symbol),
		zap.String("interval", string(params.Interval)),
		zap.Int("bars", written),
	)

	return written, nil
}
