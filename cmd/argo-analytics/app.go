package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/store"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// app carries the configuration and collaborators shared by every command.
type app struct {
	cfg    config.Config
	logger *logger.Logger
	out    io.Writer
}

// setup loads the configuration named by --config (or the defaults) and applies
// the global flag overrides.
func setup(cmd *cli.Command) (*app, error) {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if p := cmd.String("provider"); p != "" {
		cfg.Provider.Type = provider.ProviderType(p)
	}

	if key := cmd.String("api-key"); key != "" {
		cfg.Provider.APIKey = key
	}

	level := cfg.LogLevel
	if l := cmd.String("log-level"); l != "" {
		level = l
	}

	if level == "" {
		level = "info"
	}

	log, err := logger.NewLoggerWithLevel(level, "stderr")
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: log, out: output(cmd)}, nil
}

// output is the root command's writer, which tests replace with a buffer.
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// marketClient wraps the configured provider in the cache and returns a client around it.
func (a *app) marketClient(opts ...marketdata.ClientOption) (*marketdata.Client, error) {
	p, err := provider.NewMarketDataProvider(a.cfg.Provider)
	if err != nil {
		return nil, err
	}

	cached := marketdata.NewCachedProvider(p, marketdata.CachePolicy{
		TTL:     a.cfg.Cache.TTL,
		KeyedBy: marketdata.DefaultCacheKey,
	})

	return marketdata.NewClient(cached, append([]marketdata.ClientOption{marketdata.WithLogger(a.logger)}, opts...)...)
}

// openStore opens the parquet-backed candle store at DataPath.
func (a *app) openStore() (*store.DuckDBStore, error) {
	if a.cfg.DataPath != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.DataPath), 0o755); err != nil {
			return nil, err
		}
	}

	return store.NewDuckDBStore(a.cfg.DataPath, a.logger)
}

// timeRange resolves --start and --end, defaulting to the last `days` days.
func timeRange(cmd *cli.Command, days int) (time.Time, time.Time) {
	end := cmd.Timestamp("end")
	if end.IsZero() {
		end = time.Now()
	}

	start := cmd.Timestamp("start")
	if start.IsZero() {
		start = end.AddDate(0, 0, -days)
	}

	return start.UTC(), end.UTC()
}
