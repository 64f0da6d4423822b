package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DuckDBStore keeps candles in an in-memory DuckDB table. When a parquet path is
// configured the table is loaded from it on open and exported to it after every upsert.
type DuckDBStore struct {
	db          *sql.DB
	parquetPath string
	logger      *logger.Logger
	sq          squirrel.StatementBuilderType
}

var _ CandleStore = (*DuckDBStore)(nil)

// NewDuckDBStore opens a store. An empty parquetPath keeps data in memory only.
func NewDuckDBStore(parquetPath string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open DuckDB connection", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			PRIMARY KEY (symbol, time)
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to create table", err)
	}

	s := &DuckDBStore{
		db:          db,
		parquetPath: parquetPath,
		logger:      log.Component("store"),
		sq:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if parquetPath != "" {
		if _, statErr := os.Stat(parquetPath); statErr == nil {
			if err := s.importParquet(); err != nil {
				db.Close()

				return nil, err
			}
		}
	}

	return s, nil
}

func (s *DuckDBStore) importParquet() error {
	// Squirrel doesn't support table functions in FROM, so this stays raw SQL
	query := fmt.Sprintf(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		SELECT id, time, symbol, open, high, low, close, volume FROM read_parquet('%s')
	`, quoteLiteral(s.parquetPath))

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load %s", s.parquetPath)
	}

	s.logger.Debug("loaded parquet store", zap.String("path", s.parquetPath))

	return nil
}

// Upsert implements CandleStore. Within one call the last bar of a (symbol, time) pair wins.
func (s *DuckDBStore) Upsert(ctx context.Context, bars []types.MarketData) (n int, err error) {
	bars = dedupe(bars)
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		id := bar.Id
		if id == "" {
			id = uuid.New().String()
		}

		_, err = stmt.ExecContext(ctx, id, bar.Time.UTC(), bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert %s at %s", bar.Symbol, bar.Time)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	if s.parquetPath != "" {
		if err := s.exportParquet(ctx); err != nil {
			return 0, err
		}
	}

	s.logger.Debug("upserted bars", zap.Int("bars", len(bars)))

	return len(bars), nil
}

func (s *DuckDBStore) exportParquet(ctx context.Context) error {
	query := fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`, quoteLiteral(s.parquetPath))

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export to %s", s.parquetPath)
	}

	return nil
}

// Load implements CandleStore.
func (s *DuckDBStore) Load(ctx context.Context, symbol string, start, end time.Time) (types.PriceSeries, error) {
	conditions := squirrel.And{squirrel.Eq{"symbol": symbol}}
	if !start.IsZero() {
		conditions = append(conditions, squirrel.GtOrEq{"time": start.UTC()})
	}

	if !end.IsZero() {
		conditions = append(conditions, squirrel.LtOrEq{"time": end.UTC()})
	}

	query, args, err := s.sq.
		Select("id", "time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(conditions).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	prices := types.PriceSeries{Symbol: symbol}

	for rows.Next() {
		var bar types.MarketData
		if err := rows.Scan(&bar.Id, &bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		bar.Time = bar.Time.UTC()
		prices.Bars = append(prices.Bars, bar)
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate rows", err)
	}

	return prices, nil
}

// Symbols implements CandleStore.
func (s *DuckDBStore) Symbols(ctx context.Context) ([]string, error) {
	query, args, err := s.sq.Select("DISTINCT symbol").From("market_data").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// LoadCSV reads a flat price file. Column names match case-insensitively; a
// missing column is a schema error. Rows whose time or close cannot be cast are dropped.
func (s *DuckDBStore) LoadCSV(ctx context.Context, path, symbol string, opts series.TableOptions) (types.PriceSeries, error) {
	timeCol, closeCol := opts.TimeColumn, opts.CloseColumn
	if timeCol == "" {
		timeCol = "timestamp"
	}

	if closeCol == "" {
		closeCol = "close"
	}

	source := fmt.Sprintf("read_csv_auto('%s', all_varchar = true)", quoteLiteral(path))

	columns, err := s.columns(ctx, source)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeSchema, err, "failed to read %s", path)
	}

	resolvedTime, ok := matchColumn(columns, timeCol)
	if !ok {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMissingColumn, "column %q not found in %s (have %s)", timeCol, path, strings.Join(columns, ", "))
	}

	resolvedClose, ok := matchColumn(columns, closeCol)
	if !ok {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMissingColumn, "column %q not found in %s (have %s)", closeCol, path, strings.Join(columns, ", "))
	}

	query := fmt.Sprintf(`
		SELECT t, c FROM (
			SELECT TRY_CAST(%s AS TIMESTAMP) AS t, TRY_CAST(%s AS DOUBLE) AS c FROM %s
		) WHERE t IS NOT NULL AND c IS NOT NULL
	`, quoteIdent(resolvedTime), quoteIdent(resolvedClose), source)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", path)
	}
	defer rows.Close()

	var bars []types.MarketData

	for rows.Next() {
		var (
			ts    time.Time
			price float64
		)

		if err := rows.Scan(&ts, &price); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		bars = append(bars, types.MarketData{Symbol: symbol, Time: ts.UTC(), Close: price})
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate rows", err)
	}

	s.logger.Debug("loaded csv", zap.String("path", path), zap.Int("rows", len(bars)))

	return series.Normalize(symbol, bars), nil
}

func (s *DuckDBStore) columns(ctx context.Context, source string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows.Columns()
}

// Close implements CandleStore.
func (s *DuckDBStore) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

func dedupe(bars []types.MarketData) []types.MarketData {
	index := make(map[string]int, len(bars))
	out := make([]types.MarketData, 0, len(bars))

	for _, bar := range bars {
		key := fmt.Sprintf("%s|%d", bar.Symbol, bar.Time.UnixNano())
		if i, ok := index[key]; ok {
			out[i] = bar

			continue
		}

		index[key] = len(out)
		out = append(out, bar)
	}

	return out
}

func matchColumn(columns []string, name string) (string, bool) {
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return c, true
		}
	}

	return "", false
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
