// Package store persists candles in DuckDB, mirrored to a parquet file, and
// reads flat CSV price files.
package store

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
)

// CandleStore is the persistence surface used by the fetch and report layers.
type CandleStore interface {
	// Upsert writes bars, replacing any stored bar with the same (symbol, time).
	// It returns the number of distinct bars written.
	Upsert(ctx context.Context, bars []types.MarketData) (int, error)
	// Load returns the bars of symbol in [start, end], ascending. A zero bound is open.
	Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error)
	// Symbols lists the stored symbols in ascending order.
	Symbols(ctx context.Context) ([]string, error)
	Close() error
}
