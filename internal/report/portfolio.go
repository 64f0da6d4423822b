package report

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// PortfolioReport is the plain-text summary of the weighted portfolio.
type PortfolioReport struct {
	Date         time.Time
	InitialValue float64
	Table        types.PortfolioTable
	Correlation  types.CorrelationMatrix
	Volatility   types.VolatilityTable
}

// FileName is portfolio_report_<date>.txt.
func (r PortfolioReport) FileName() string {
	return fmt.Sprintf("portfolio_report_%s.txt", r.Date.Format(time.DateOnly))
}

// Text renders the report. The portfolio table must have at least one row.
func (r PortfolioReport) Text() (string, error) {
	if len(r.Table.Rows) == 0 {
		return "", errors.New(errors.ErrCodeReportFailed, "portfolio has no aligned returns")
	}

	last := r.Table.Rows[len(r.Table.Rows)-1]

	var b strings.Builder

	fmt.Fprintf(&b, "=== DAILY PORTFOLIO REPORT : %s ===\n\n", r.Date.Format(time.DateOnly))
	fmt.Fprintf(&b, "Total Portfolio Value (Base %s): %s\n", fixed(r.InitialValue), fixed(last.EquityCurve))
	fmt.Fprintf(&b, "Last Period Return: %s\n", percent(last.PortReturn))
	fmt.Fprintf(&b, "Annualized Volatility: %s\n", percent(r.Volatility.Portfolio()))

	b.WriteString("\n--- Asset Allocation ---\n")

	for _, asset := range r.Table.Weights.Assets() {
		fmt.Fprintf(&b, " - %s: %s\n", asset, percent(r.Table.Weights[asset]))
	}

	b.WriteString("\n--- Annualized Volatility ---\n")

	for _, entry := range r.Volatility.Entries {
		fmt.Fprintf(&b, " - %s: %s\n", entry.Asset, percent(entry.Volatility))
	}

	if len(r.Correlation.Assets) > 0 {
		b.WriteString("\n--- Correlation Matrix ---\n")

		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "\t%s\t\n", strings.Join(r.Correlation.Assets, "\t"))

		for i, asset := range r.Correlation.Assets {
			cells := make([]string, len(r.Correlation.Values[i]))
			for j, v := range r.Correlation.Values[i] {
				cells[j] = fixed(v)
			}

			fmt.Fprintf(w, "%s\t%s\t\n", asset, strings.Join(cells, "\t"))
		}

		if err := w.Flush(); err != nil {
			return "", errors.Wrap(errors.ErrCodeReportFailed, "failed to render correlation matrix", err)
		}
	}

	return b.String(), nil
}
