package chart

import (
	"errors"
	"fmt"
	"math"

	"rebalance-sim/internal/simulation"

	"github.com/vicanso/go-charts/v2"
)

// Options controls how a timeline is drawn.
type Options struct {
	Title     string
	PerMethod bool // add one line per method next to the total
	Width     int
	Height    int
}

const (
	defaultWidth  = 900
	defaultHeight = 500
)

// RenderTimeline draws total value (and optionally each method) against years
// and returns PNG bytes.
func RenderTimeline(res *simulation.Result, opts Options) ([]byte, error) {
	if res == nil || len(res.Timeline) == 0 {
		return nil, errors.New("no timeline to render")
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	title := opts.Title
	if title == "" {
		title = "Total Asset"
	}

	values := [][]float64{res.Totals()}
	names := []string{"Total"}
	if opts.PerMethod {
		for i, name := range res.Methods {
			values = append(values, res.MethodSeries(i))
			names = append(names, name)
		}
	}

	xLabels := make([]string, len(res.Timeline))
	for i, p := range res.Timeline {
		xLabels[i] = yearLabel(p.Month)
	}

	yMin, yMax := bounds(values)

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	final := res.Final()
	subtitle := fmt.Sprintf("%d years • final %.2f", final.Month/12, final.Total)

	painter, err := charts.Render(charts.ChartOption{
		SeriesList: seriesList,
		Width:      opts.Width,
		Height:     opts.Height,
	},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNumber(len(res.Timeline)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// yearLabel marks whole years as "Y<n>" and leaves other months as fractional years.
func yearLabel(month int) string {
	if month%12 == 0 {
		return fmt.Sprintf("Y%d", month/12)
	}
	return fmt.Sprintf("%.2f", float64(month)/12)
}

func splitNumber(points int) int {
	years := (points - 1) / 12
	switch {
	case years <= 1:
		return 6
	case years <= 12:
		return years
	default:
		return 10
	}
}

// bounds returns a padded y range covering every series.
func bounds(values [][]float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, series := range values {
		for _, v := range series {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = math.Abs(maxVal) * 0.05
	}
	if padding == 0 {
		padding = 1
	}
	return minVal - padding, maxVal + padding
}
