package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vicanso/go-charts/v2"

	"github.com/rustyeddy/rjournal/metrics"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// EquityChart renders the balance after each day as a PNG line chart.
func EquityChart(title string, r *metrics.Report) ([]byte, error) {
	if r == nil || len(r.Daily) == 0 {
		return nil, ErrNoData
	}

	xLabels := make([]string, len(r.Equity))
	xLabels[0] = "Start"
	for i, d := range r.Daily {
		xLabels[i+1] = "D" + strconv.Itoa(d.Day)
	}

	yMin, yMax := r.Equity[0], r.Equity[0]
	for _, v := range r.Equity {
		yMin = math.Min(yMin, v)
		yMax = math.Max(yMax, v)
	}
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(yMax)*0.01, 1)
	}
	yMin -= pad
	yMax += pad

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	p, err := charts.LineRender(
		[][]float64{r.Equity},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// OutcomeChart renders the win/loss/break-even split as a PNG pie chart.
func OutcomeChart(title string, o metrics.OverallMetrics) ([]byte, error) {
	if o.TotalTrades == 0 {
		return nil, ErrNoData
	}

	var (
		values []float64
		labels []string
	)
	for _, c := range []struct {
		name  string
		count int
	}{
		{"Wins", o.Wins},
		{"Losses", o.Losses},
		{"Break-even", o.BreakEven},
	} {
		if c.count == 0 {
			continue
		}
		pct := float64(c.count) / float64(o.TotalTrades) * 100
		values = append(values, float64(c.count))
		labels = append(labels, fmt.Sprintf("%s (%.1f%%)", c.name, pct))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}

	return p.Bytes()
}
