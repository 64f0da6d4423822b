package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// DailyReport is the markdown summary of one asset.
type DailyReport struct {
	Symbol string
	Date   time.Time
	// Source describes where the prices came from, e.g. "yahoo 1d".
	Source   string
	BuyHold  types.EquityCurveTable
	Momentum optional.Option[types.EquityCurveTable]
	Forecast optional.Option[types.ForecastResult]
	// ForecastNote explains a missing forecast.
	ForecastNote string
}

// FileName is <date>_<symbol>.md.
func (r DailyReport) FileName() string {
	return fmt.Sprintf("%s_%s.md", r.Date.Format(time.DateOnly), r.Symbol)
}

// Markdown renders the report. The buy-and-hold table must not be empty.
func (r DailyReport) Markdown() (string, error) {
	if len(r.BuyHold.Rows) == 0 {
		return "", errors.Newf(errors.ErrCodeReportFailed, "no prices for %s", r.Symbol)
	}

	first := r.BuyHold.Rows[0]
	last := r.BuyHold.Rows[len(r.BuyHold.Rows)-1]

	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Report: %s\n", r.Symbol)
	fmt.Fprintf(&b, "- Date (UTC): **%s**\n\n", r.Date.UTC().Format(time.DateOnly))

	b.WriteString("## Latest data\n")
	fmt.Fprintf(&b, "- First close: **%s** (%s)\n", fixed(first.Close), first.Time.UTC().Format(time.DateOnly))
	fmt.Fprintf(&b, "- Last close: **%s** (%s)\n\n", fixed(last.Close), last.Time.UTC().Format(time.DateOnly))

	writeMetrics(&b, "Buy & Hold metrics (annualized where applicable)", metrics.Compute(r.BuyHold))

	if momentum, err := r.Momentum.Take(); err == nil {
		writeMetrics(&b, "Momentum metrics (annualized where applicable)", metrics.Compute(momentum))

		if n := len(momentum.Rows); n > 0 {
			fmt.Fprintf(&b, "- Current position: **%s**\n\n", position(momentum.Rows[n-1].Signal))
		}
	}

	b.WriteString("## Next-day forecast\n")

	if fc, err := r.Forecast.Take(); err == nil {
		level := 100 - fc.Alpha*100
		fmt.Fprintf(&b, "- As of: **%s**\n", fc.AsOf())
		fmt.Fprintf(&b, "- Predicted close: **%s** (%s to %s, %s%% interval)\n",
			fixed(fc.PredClose), fixed(fc.LowerClose), fixed(fc.UpperClose), fixed(level))
		fmt.Fprintf(&b, "- Predicted log return: **%s**\n", percent(fc.PredReturn))
		fmt.Fprintf(&b, "- Training rows: %d\n", fc.NTrain)

		if r2, err := fc.ModelR2.Take(); err == nil {
			fmt.Fprintf(&b, "- In-sample R²: %s\n", fixed(r2))
		}
	} else {
		note := r.ForecastNote
		if note == "" {
			note = "not available"
		}

		fmt.Fprintf(&b, "- %s\n", note)
	}

	if r.Source != "" {
		fmt.Fprintf(&b, "\n_Data source: %s._\n", r.Source)
	}

	return b.String(), nil
}

func writeMetrics(b *strings.Builder, title string, m types.MetricsBundle) {
	fmt.Fprintf(b, "## %s\n", title)
	fmt.Fprintf(b, "- Total return: **%s**\n", percent(m.TotalReturn))
	fmt.Fprintf(b, "- Volatility: **%s**\n", percent(m.AnnualizedVolatility))
	fmt.Fprintf(b, "- Sharpe: **%s**\n", fixed(m.Sharpe))
	fmt.Fprintf(b, "- Max drawdown: **%s**\n\n", percent(m.MaxDrawdown))
}

func position(signal int) string {
	if signal == 1 {
		return "long"
	}

	return "flat"
}
