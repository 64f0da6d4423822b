package report

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/forecast"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/portfolio"
	"github.com/rxtech-lab/argo-analytics/internal/strategy"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

const (
	// DailyHistory is how far back the daily report reads prices.
	DailyHistory = 2 * 365 * 24 * time.Hour
	// PortfolioHistory is how far back the portfolio report reads prices.
	PortfolioHistory = 90 * 24 * time.Hour
)

// SeriesFetcher is the part of marketdata.Client the generator needs.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, params marketdata.FetchParams) (types.PriceSeries, error)
	FetchMany(ctx context.Context, symbols []string, interval provider.Timespan, start, end time.Time) (map[string]types.PriceSeries, error)
}

// Generator fetches prices, runs the engines and writes the reports.
type Generator struct {
	fetcher SeriesFetcher
	writer  *Writer
	cfg     config.Config
	logger  *logger.Logger
	now     func() time.Time
}

// NewGenerator creates a Generator.
func NewGenerator(fetcher SeriesFetcher, writer *Writer, cfg config.Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Generator{
		fetcher: fetcher,
		writer:  writer,
		cfg:     cfg,
		logger:  log.Component("report"),
		now:     time.Now,
	}
}

// Daily writes the markdown report and equity chart of one asset and returns the report path.
// A forecast that cannot be produced is noted in the report instead of failing it.
func (g *Generator) Daily(ctx context.Context, symbol string) (string, error) {
	now := g.now().UTC()

	prices, err := g.fetcher.FetchSeries(ctx, marketdata.FetchParams{
		Symbol:   symbol,
		Interval: provider.TimespanOneDay,
		Start:    now.Add(-DailyHistory),
		End:      now,
	})
	if err != nil {
		return "", err
	}

	report := DailyReport{
		Symbol:   symbol,
		Date:     now,
		Source:   fmt.Sprintf("%s %s", g.cfg.Provider.Type, provider.TimespanOneDay),
		BuyHold:  strategy.BuyAndHold(prices, g.cfg.InitialValue),
		Momentum: optional.None[types.EquityCurveTable](),
		Forecast: optional.None[types.ForecastResult](),
	}

	curves := []Curve{{Name: "Buy & Hold", Values: report.BuyHold.Equity()}}

	momentum, err := strategy.Momentum(prices, g.cfg.Momentum.Lookback, g.cfg.InitialValue)
	if err != nil {
		g.logger.Warn("momentum skipped", zap.String("symbol", symbol), zap.Error(err))
	} else {
		report.Momentum = optional.Some(momentum)
		curves = append(curves, Curve{Name: "Momentum", Values: momentum.Equity()})
	}

	result, err := forecast.Forecast(prices, g.cfg.Forecast)
	if err != nil {
		g.logger.Warn("forecast skipped", zap.String("symbol", symbol), zap.Error(err))
		report.ForecastNote = fmt.Sprintf("Forecast unavailable: %v", err)
	} else {
		report.Forecast = optional.Some(result)
	}

	path, err := g.writer.WriteDaily(report)
	if err != nil {
		return "", err
	}

	if len(report.BuyHold.Rows) > 1 {
		png, err := EquityChart(fmt.Sprintf("%s equity", symbol), report.BuyHold.Times(), curves...)
		if err != nil {
			return "", err
		}

		if _, err := g.writer.Write(fmt.Sprintf("%s_%s.png", now.Format(time.DateOnly), symbol), png); err != nil {
			return "", err
		}
	}

	return path, nil
}

// Portfolio writes the portfolio text report and equity chart and returns the report path.
func (g *Generator) Portfolio(ctx context.Context) (string, error) {
	now := g.now().UTC()

	prices, err := g.fetcher.FetchMany(ctx, g.cfg.Assets, provider.TimespanOneDay, now.Add(-PortfolioHistory), now)
	if err != nil {
		return "", err
	}

	weights := g.cfg.PortfolioWeights()

	table, err := portfolio.ComputeEquity(prices, weights, g.cfg.InitialValue)
	if err != nil {
		return "", err
	}

	corr, vol, err := portfolio.ComputeRiskMetrics(prices, weights)
	if err != nil {
		return "", err
	}

	path, err := g.writer.WritePortfolio(PortfolioReport{
		Date:         now,
		InitialValue: g.cfg.InitialValue,
		Table:        table,
		Correlation:  corr,
		Volatility:   vol,
	})
	if err != nil {
		return "", err
	}

	if len(table.Rows) > 1 {
		png, err := EquityChart("Portfolio equity", table.Times(), Curve{Name: "Portfolio", Values: table.Equity()})
		if err != nil {
			return "", err
		}

		if _, err := g.writer.Write(fmt.Sprintf("portfolio_%s.png", now.Format(time.DateOnly)), png); err != nil {
			return "", err
		}
	}

	return path, nil
}

// RunAll writes the daily report of every configured asset and the portfolio
// report. A failing report does not stop the others; all failures are returned.
func (g *Generator) RunAll(ctx context.Context) error {
	var errs error

	for _, symbol := range g.cfg.Assets {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		if _, err := g.Daily(ctx, symbol); err != nil {
			g.logger.Error("daily report failed", zap.String("symbol", symbol), zap.Error(err))
			errs = multierr.Append(errs, errors.Wrapf(errors.ErrCodeReportFailed, err, "daily report %s", symbol))
		}
	}

	if _, err := g.Portfolio(ctx); err != nil {
		g.logger.Error("portfolio report failed", zap.Error(err))
		errs = multierr.Append(errs, errors.Wrap(errors.ErrCodeReportFailed, "portfolio report", err))
	}

	return errs
}
