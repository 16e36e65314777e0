// Package charts renders dashboard figures as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"finanzas/internal/finance"
)

// ErrNoData is returned when there is nothing to draw. go-chart cannot
// render an empty or flat series.
var ErrNoData = errors.New("no data to chart")

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var background = chart.Style{
	Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
	FillColor: chart.ColorWhite,
}

// MonthlyLine draws income and expenses per month of year.
func MonthlyLine(w io.Writer, year int, months []finance.MonthTotal) error {
	if len(months) < 2 {
		return ErrNoData
	}

	xs := make([]float64, len(months))
	income := make([]float64, len(months))
	expenses := make([]float64, len(months))
	var peak float64
	for i, m := range months {
		xs[i] = float64(m.Month)
		income[i] = majorUnits(m.Income)
		expenses[i] = majorUnits(m.Expenses)
		peak = maxf(peak, income[i], expenses[i])
	}
	if peak == 0 {
		return ErrNoData
	}

	ticks := make([]chart.Tick, 0, len(months))
	for _, m := range months {
		ticks = append(ticks, chart.Tick{Value: float64(m.Month), Label: monthLabels[m.Month-1]})
	}

	graph := chart.Chart{
		Title:      fmt.Sprintf("Income and expenses %d", year),
		Width:      1000,
		Height:     500,
		Background: background,
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Income",
				XValues: xs,
				YValues: income,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2},
			},
			chart.ContinuousSeries{
				Name:    "Expenses",
				XValues: xs,
				YValues: expenses,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render monthly chart: %w", err)
	}
	return nil
}

// CategoryPie draws each category's share of the total. Slices use the
// category colour when it is a six-digit hex value.
func CategoryPie(w io.Writer, title string, items []finance.CategoryAmount) error {
	var total int64
	for _, it := range items {
		if it.Amount > 0 {
			total += it.Amount
		}
	}
	if total == 0 {
		return ErrNoData
	}

	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if it.Amount <= 0 {
			continue
		}
		pct := float64(it.Amount) / float64(total) * 100
		v := chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", it.Name, pct),
			Value: majorUnits(it.Amount),
		}
		if c, ok := parseHex(it.Color); ok {
			v.Style = chart.Style{FillColor: c}
		}
		values = append(values, v)
	}

	pie := chart.PieChart{
		Title:      title,
		Width:      700,
		Height:     700,
		Values:     values,
		Background: background,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render category chart: %w", err)
	}
	return nil
}

func majorUnits(cents int64) float64 {
	return float64(cents) / 100
}

func maxf(a float64, rest ...float64) float64 {
	for _, v := range rest {
		if v > a {
			a = v
		}
	}
	return a
}

func parseHex(s string) (drawing.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return drawing.Color{}, false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return drawing.Color{}, false
		}
	}
	return drawing.ColorFromHex(s), true
}
