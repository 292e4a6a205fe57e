package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/hlcd"
)

func toBarItems(counts []uint64) []opts.BarData {
	out := make([]opts.BarData, len(counts))
	for i, c := range counts {
		out[i] = opts.BarData{Value: c}
	}
	return out
}

// WeightChart draws the number of codewords of every Hamming weight
func WeightChart(params hlcd.CodeParameters, r *hlcd.Report) *charts.Bar {
	title := fmt.Sprintf("Weight distribution of %s", params)
	subtitle := fmt.Sprintf("minimum distance %d, det(G·Ḡᵗ) = %d", r.MinimumDistance, r.Determinant)

	xLabels := make([]string, len(r.WeightCounts))
	for w := range xLabels {
		xLabels[w] = strconv.Itoa(w)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "weight"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "codewords"}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("codewords", toBarItems(r.WeightCounts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return bar
}

// Render writes one HTML page holding a chart per code
func Render(w io.Writer, bars ...*charts.Bar) error {
	if len(bars) == 0 {
		return errors.New("nothing to render")
	}
	page := components.NewPage()
	for _, bar := range bars {
		page.AddCharts(bar)
	}
	return errors.Wrap(page.Render(w), "error rendering weight distribution")
}
