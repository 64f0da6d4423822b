package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-analytics/internal/version"
)

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.TimestampFlag{
			Name:  "start",
			Usage: "Start date in `YYYY-MM-DD` format",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.TimestampFlag{
			Name:  "end",
			Usage: "End date in `YYYY-MM-DD` format (defaults to now)",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
	}
}

func csvFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "csv",
			Usage: "Read closes from a CSV `FILE` instead of the provider",
		},
		&cli.StringFlag{
			Name:  "time-column",
			Usage: "CSV timestamp column",
			Value: "timestamp",
		},
		&cli.StringFlag{
			Name:  "close-column",
			Usage: "CSV close column",
			Value: "close",
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}

	return out
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "argo-analytics",
		Usage:   "Backtest strategies, blend portfolios and forecast next-day closes",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
				Sources: cli.EnvVars("ARGO_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Market data provider (yahoo, polygon, binance, finnhub)",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Provider API key",
				Sources: cli.EnvVars("ARGO_API_KEY"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Download candles or import a CSV file into the parquet store",
				Action: fetchAction,
				Flags: withFlags([]cli.Flag{
					&cli.StringSliceFlag{
						Name:    "symbols",
						Aliases: []string{"s"},
						Usage:   "Symbols to download (defaults to the configured assets)",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Symbol of the imported CSV rows",
					},
					&cli.StringFlag{
						Name:  "interval",
						Usage: "Bar interval, e.g. 5m, 1h, 1d",
						Value: "1d",
					},
				}, rangeFlags(), csvFlags()),
			},
			{
				Name:   "backtest",
				Usage:  "Run buy-and-hold and momentum over one symbol",
				Action: backtestAction,
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{
						Name:     "symbol",
						Aliases:  []string{"s"},
						Usage:    "Symbol to backtest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "buy_and_hold, momentum or all",
						Value: "all",
					},
					&cli.IntFlag{
						Name:  "lookback",
						Usage: "Momentum lookback in bars (defaults to the configured value)",
					},
					&cli.StringFlag{
						Name:  "interval",
						Usage: "Bar interval",
						Value: "1d",
					},
					&cli.BoolFlag{
						Name:  "from-store",
						Usage: "Read bars from the parquet store instead of the provider",
					},
					&cli.StringFlag{
						Name:  "stats",
						Usage: "Write the metrics as YAML to `FILE`",
					},
				}, rangeFlags()),
			},
			{
				Name:   "portfolio",
				Usage:  "Blend daily returns into a fixed-weight portfolio and print its risk",
				Action: portfolioAction,
				Flags: withFlags([]cli.Flag{
					&cli.StringSliceFlag{
						Name:  "assets",
						Usage: "Assets to blend (defaults to the configured assets)",
					},
					&cli.StringFlag{
						Name:  "weights",
						Usage: "Weights as SYMBOL:WEIGHT pairs, e.g. AAPL:0.5,MSFT:0.5",
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "History length in days when --start is not set",
						Value: 90,
					},
				}, rangeFlags()),
			},
			{
				Name:   "forecast",
				Usage:  "Forecast the next daily close with an OLS prediction interval",
				Action: forecastAction,
				Flags: withFlags([]cli.Flag{
					&cli.StringFlag{
						Name:     "symbol",
						Aliases:  []string{"s"},
						Usage:    "Symbol to forecast",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "alpha",
						Usage: "Significance level of the interval",
					},
					&cli.StringFlag{
						Name:  "interval",
						Usage: "Source bar interval; intraday bars are resampled to daily closes",
						Value: "1d",
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "History length in days when --start is not set",
						Value: 730,
					},
				}, rangeFlags(), csvFlags()),
			},
			{
				Name:   "report",
				Usage:  "Write the daily and portfolio reports",
				Action: reportAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Only write the daily report of this symbol",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Report directory (defaults to the configured one)",
					},
					&cli.BoolFlag{
						Name:  "schedule",
						Usage: "Keep running and write the reports on the configured cron schedule",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the dashboard JSON API",
				Action: serveAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.BoolFlag{
						Name:  "reports",
						Usage: "Also write the reports on the configured schedule",
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "config or provider",
						Value: "config",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to `FILE`",
					},
				},
			},
			{
				Name:   "providers",
				Usage:  "List the supported market data providers",
				Action: providersAction,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
