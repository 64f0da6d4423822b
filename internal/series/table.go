package series

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Table is an untyped tabular payload, e.g. a CSV file or a provider response
// flattened to strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// TableOptions names the columns to read. Empty names fall back to the defaults
// "timestamp" and "close".
type TableOptions struct {
	TimeColumn  string
	CloseColumn string
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseTime parses the timestamp formats produced by the supported providers and
// flat files. Bare integers are read as unix seconds.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}

	return time.Time{}, false
}

// ParseTable converts a Table into a canonical PriceSeries.
// A missing time or close column is a schema error. Cells that cannot be parsed
// are coerced to missing and their rows dropped.
func ParseTable(symbol string, table Table, opts TableOptions) (types.PriceSeries, error) {
	timeCol := opts.TimeColumn
	if timeCol == "" {
		timeCol = "timestamp"
	}

	closeCol := opts.CloseColumn
	if closeCol == "" {
		closeCol = "close"
	}

	timeIdx := columnIndex(table.Columns, timeCol)
	if timeIdx < 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMissingColumn,
			"missing %q column, available columns: %v", timeCol, table.Columns)
	}

	closeIdx := columnIndex(table.Columns, closeCol)
	if closeIdx < 0 {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMissingColumn,
			"missing %q column, available columns: %v", closeCol, table.Columns)
	}

	openIdx := columnIndex(table.Columns, "open")
	highIdx := columnIndex(table.Columns, "high")
	lowIdx := columnIndex(table.Columns, "low")
	volumeIdx := columnIndex(table.Columns, "volume")

	bars := make([]types.MarketData, 0, len(table.Rows))

	for _, row := range table.Rows {
		ts, ok := ParseTime(cell(row, timeIdx))
		if !ok {
			continue
		}

		closePrice, ok := parseFloat(cell(row, closeIdx))
		if !ok {
			continue
		}

		bar := types.MarketData{Symbol: symbol, Time: ts, Close: closePrice}
		bar.Open, _ = parseFloat(cell(row, openIdx))
		bar.High, _ = parseFloat(cell(row, highIdx))
		bar.Low, _ = parseFloat(cell(row, lowIdx))
		bar.Volume, _ = parseFloat(cell(row, volumeIdx))

		bars = append(bars, bar)
	}

	return Normalize(symbol, bars), nil
}

func columnIndex(columns []string, name string) int {
	return slices.IndexFunc(columns, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), name)
	})
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}

func parseFloat(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}

	return f, true
}
