package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/forecast"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/portfolio"
	"github.com/rxtech-lab/argo-analytics/internal/report"
	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/server"
	"github.com/rxtech-lab/argo-analytics/internal/store"
	"github.com/rxtech-lab/argo-analytics/internal/strategy"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// fetchAction downloads candles into the store, or imports a CSV file with --csv.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if path := cmd.String("csv"); path != "" {
		symbol := cmd.String("symbol")
		if symbol == "" {
			return errors.New(errors.ErrCodeMissingParameter, "--symbol is required with --csv")
		}

		prices, err := db.LoadCSV(ctx, path, symbol, tableOptions(cmd))
		if err != nil {
			return err
		}

		n, err := db.Upsert(ctx, prices.Bars)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s: imported %d bars from %s\n", symbol, n, path)

		return nil
	}

	interval, err := provider.ParseTimespan(cmd.String("interval"))
	if err != nil {
		return err
	}

	client, err := a.marketClient(marketdata.WithWriter(db))
	if err != nil {
		return err
	}

	start, end := timeRange(cmd, 365)

	for _, symbol := range symbols(cmd, "symbols", a.cfg.Assets) {
		n, err := client.Download(ctx, marketdata.FetchParams{Symbol: symbol, Interval: interval, Start: start, End: end})
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s: stored %d %s bars\n", symbol, n, interval)
	}

	return nil
}

// backtestAction runs the single-asset strategies and prints their metrics.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	symbol := cmd.String("symbol")
	start, end := timeRange(cmd, 365)

	prices, err := loadPrices(ctx, a, cmd, symbol, start, end)
	if err != nil {
		return err
	}

	lookback := a.cfg.Momentum.Lookback
	if cmd.IsSet("lookback") {
		lookback = int(cmd.Int("lookback"))
	}

	var tables []types.EquityCurveTable

	name := cmd.String("strategy")
	if name == "all" || name == strategy.NameBuyAndHold {
		tables = append(tables, strategy.BuyAndHold(prices, a.cfg.InitialValue))
	}

	if name == "all" || name == strategy.NameMomentum {
		table, err := strategy.Momentum(prices, lookback, a.cfg.InitialValue)
		if err != nil {
			return err
		}

		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown strategy %q", name)
	}

	stats := make([]types.StrategyStats, len(tables))
	now := time.Now().UTC()

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tTOTAL RETURN\tVOLATILITY\tSHARPE\tMAX DRAWDOWN\tBARS")

	for i, table := range tables {
		m := metrics.Compute(table)
		stats[i] = types.StrategyStats{
			Symbol:    symbol,
			Strategy:  table.Strategy,
			Timestamp: now,
			Start:     prices.Bars[0].Time,
			End:       prices.Bars[len(prices.Bars)-1].Time,
			Bars:      prices.Len(),
			Metrics:   m,
		}

		fmt.Fprintf(w, "%s\t%.2f%%\t%.2f%%\t%.2f\t%.2f%%\t%d\n",
			table.Strategy, m.TotalReturn*100, m.AnnualizedVolatility*100, m.Sharpe, m.MaxDrawdown*100, prices.Len())
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if path := cmd.String("stats"); path != "" {
		if err := types.WriteStrategyStats(path, stats); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "stats written to %s\n", path)
	}

	return nil
}

// portfolioAction blends the configured or given assets and prints the portfolio report.
func portfolioAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	assets := symbols(cmd, "assets", a.cfg.Assets)

	weights := a.cfg.PortfolioWeights()
	if cmd.IsSet("assets") {
		weights = portfolio.EqualWeights(assets)
	}

	if raw := cmd.String("weights"); raw != "" {
		weights, err = types.ParseWeightVector(raw)
		if err != nil {
			return err
		}
	}

	client, err := a.marketClient()
	if err != nil {
		return err
	}

	start, end := timeRange(cmd, int(cmd.Int("days")))

	prices, err := client.FetchMany(ctx, assets, provider.TimespanOneDay, start, end)
	if err != nil {
		return err
	}

	table, err := portfolio.ComputeEquity(prices, weights, a.cfg.InitialValue)
	if err != nil {
		return err
	}

	corr, vol, err := portfolio.ComputeRiskMetrics(prices, weights)
	if err != nil {
		return err
	}

	text, err := report.PortfolioReport{
		Date:         end,
		InitialValue: a.cfg.InitialValue,
		Table:        table,
		Correlation:  corr,
		Volatility:   vol,
	}.Text()
	if err != nil {
		return err
	}

	_, err = io.WriteString(a.out, text)

	return err
}

// forecastAction fits the next-day model on provider data or a CSV file.
func forecastAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	cfg := a.cfg.Forecast
	if cmd.IsSet("alpha") {
		cfg.Alpha = cmd.Float("alpha")
	}

	symbol := cmd.String("symbol")

	var result types.ForecastResult

	if path := cmd.String("csv"); path != "" {
		db, err := store.NewDuckDBStore("", a.logger)
		if err != nil {
			return err
		}
		defer db.Close()

		prices, err := db.LoadCSV(ctx, path, symbol, tableOptions(cmd))
		if err != nil {
			return err
		}

		result, err = forecast.Forecast(prices, cfg)
		if err != nil {
			return err
		}
	} else {
		interval, err := provider.ParseTimespan(cmd.String("interval"))
		if err != nil {
			return err
		}

		client, err := a.marketClient()
		if err != nil {
			return err
		}

		start, end := timeRange(cmd, int(cmd.Int("days")))

		prices, err := client.FetchSeries(ctx, marketdata.FetchParams{Symbol: symbol, Interval: interval, Start: start, End: end})
		if err != nil {
			return err
		}

		if interval == provider.TimespanOneDay {
			result, err = forecast.Forecast(prices, cfg)
		} else {
			result, err = forecast.ForecastFromIntraday(prices, cfg)
		}

		if err != nil {
			return err
		}
	}

	level := (1 - result.Alpha) * 100

	fmt.Fprintf(a.out, "%s as of %s (last close %.2f)\n", result.Symbol, result.AsOf(), result.LastClose)
	fmt.Fprintf(a.out, "predicted close: %.2f [%.2f, %.2f] at %.0f%%\n", result.PredClose, result.LowerClose, result.UpperClose, level)
	fmt.Fprintf(a.out, "predicted log return: %.4f [%.4f, %.4f]\n", result.PredReturn, result.LowerReturn, result.UpperReturn)

	if r2, err := result.ModelR2.Take(); err == nil {
		fmt.Fprintf(a.out, "training rows: %d, R²: %.4f\n", result.NTrain, r2)
	} else {
		fmt.Fprintf(a.out, "training rows: %d\n", result.NTrain)
	}

	return nil
}

// reportAction writes the reports once, or on the configured schedule with --schedule.
func reportAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if dir := cmd.String("output"); dir != "" {
		a.cfg.ReportDir = dir
	}

	generator, err := a.generator()
	if err != nil {
		return err
	}

	if cmd.Bool("schedule") {
		scheduler := report.NewScheduler(ctx, a.logger)
		if err := scheduler.RegisterReports(a.cfg.Schedule, generator); err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		scheduler.Stop(stopCtx)

		return nil
	}

	if symbol := cmd.String("symbol"); symbol != "" {
		path, err := generator.Daily(ctx, symbol)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "report written to %s\n", path)

		return nil
	}

	if err := generator.RunAll(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "reports written to %s\n", a.cfg.ReportDir)

	return nil
}

// serveAction runs the dashboard API until the process is interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	client, err := a.marketClient(marketdata.WithProgressWriter(io.Discard))
	if err != nil {
		return err
	}

	srv := server.New(client, a.cfg, a.logger)
	if err := srv.Start(cmd.String("addr")); err != nil {
		return err
	}

	var scheduler *report.Scheduler

	if cmd.Bool("reports") && a.cfg.Schedule != "" {
		generator, err := a.generator()
		if err != nil {
			return err
		}

		scheduler = report.NewScheduler(ctx, a.logger)
		if err := scheduler.RegisterReports(a.cfg.Schedule, generator); err != nil {
			return err
		}

		scheduler.Start()
	}

	fmt.Fprintf(a.out, "listening on %s\n", srv.Address())
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(stopCtx)
	}

	a.logger.Info("shutting down", zap.String("address", srv.Address()))

	return srv.Stop(stopCtx)
}

// schemaAction prints the JSON schema of the config file or the provider section.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	switch target := cmd.String("target"); target {
	case "config":
		schema, err = config.Schema()
	case "provider":
		schema, err = marketdata.GetProviderConfigSchema()
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown schema target %q (config, provider)", target)
	}

	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		return os.WriteFile(path, []byte(schema), 0o644)
	}

	_, err = fmt.Fprintln(output(cmd), schema)

	return err
}

// providersAction lists the supported market data providers.
func providersAction(_ context.Context, cmd *cli.Command) error {
	w := tabwriter.NewWriter(output(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tAUTH\tINTERVALS\tDESCRIPTION")

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", info.Name, info.DisplayName, info.RequiresAuth, strings.Join(info.Intervals, ","), info.Description)
	}

	return w.Flush()
}

func (a *app) generator() (*report.Generator, error) {
	writer, err := report.NewWriter(a.cfg.ReportDir, a.logger)
	if err != nil {
		return nil, err
	}

	client, err := a.marketClient(marketdata.WithProgressWriter(io.Discard))
	if err != nil {
		return nil, err
	}

	return report.NewGenerator(client, writer, a.cfg, a.logger), nil
}

// loadPrices reads the symbol from the store with --from-store, otherwise from the provider.
func loadPrices(ctx context.Context, a *app, cmd *cli.Command, symbol string, start, end time.Time) (types.PriceSeries, error) {
	if cmd.Bool("from-store") {
		db, err := a.openStore()
		if err != nil {
			return types.PriceSeries{}, err
		}
		defer db.Close()

		prices, err := db.Load(ctx, symbol, start, end)
		if err != nil {
			return types.PriceSeries{}, err
		}

		if prices.Len() == 0 {
			return types.PriceSeries{}, errors.Newf(errors.ErrCodeNoDataFound, "no stored bars for %s", symbol)
		}

		return prices, nil
	}

	interval, err := provider.ParseTimespan(cmd.String("interval"))
	if err != nil {
		return types.PriceSeries{}, err
	}

	client, err := a.marketClient()
	if err != nil {
		return types.PriceSeries{}, err
	}

	return client.FetchSeries(ctx, marketdata.FetchParams{Symbol: symbol, Interval: interval, Start: start, End: end})
}

func symbols(cmd *cli.Command, flag string, fallback []string) []string {
	var out []string

	for _, value := range cmd.StringSlice(flag) {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}

func tableOptions(cmd *cli.Command) series.TableOptions {
	return series.TableOptions{
		TimeColumn:  cmd.String("time-column"),
		CloseColumn: cmd.String("close-column"),
	}
}
