package report

import (
	"time"

	"github.com/vicanso/go-charts/v2"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// Curve is one named line of an equity chart.
type Curve struct {
	Name   string
	Values []float64
}

// EquityChart renders the curves as a PNG line chart. Every curve must have one
// value per timestamp.
func EquityChart(title string, times []time.Time, curves ...Curve) ([]byte, error) {
	if len(times) == 0 || len(curves) == 0 {
		return nil, errors.New(errors.ErrCodeReportFailed, "nothing to chart")
	}

	labels := make([]string, len(times))
	for i, t := range times {
		labels[i] = t.UTC().Format("Jan 02")
	}

	if times[len(times)-1].Sub(times[0]) > 180*24*time.Hour {
		for i, t := range times {
			labels[i] = t.UTC().Format("Jan '06")
		}
	}

	values := make([][]float64, len(curves))
	names := make([]string, len(curves))

	for i, curve := range curves {
		if len(curve.Values) != len(times) {
			return nil, errors.Newf(errors.ErrCodeReportFailed,
				"curve %s has %d values for %d timestamps", curve.Name, len(curve.Values), len(times))
		}

		values[i] = curve.Values
		names[i] = curve.Name
	}

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = max(len(labels)/3, 3)
	}

	p, err := charts.LineRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportFailed, "failed to render chart", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportFailed, "failed to generate chart bytes", err)
	}

	return buf, nil
}
