package bench

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// GenerateHTMLChart renders the runtime series as an interactive echarts
// line chart. Sizes go on a category axis, seconds on a log axis; NaN
// entries become gaps.
func GenerateHTMLChart(rep *Report, filename string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Gaussian matrix-vector products",
			Subtitle: "Mean runtime per backend across problem sizes",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Number of samples"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds", Type: "log"}),
	)

	labels := make([]string, len(rep.Config.Sizes))
	for i, n := range rep.Config.Sizes {
		labels[i] = fmt.Sprintf("%d", n)
	}
	line = line.SetXAxis(labels)

	for _, sweep := range rep.Sweeps {
		data := make([]opts.LineData, len(sweep.TimesSec))
		for i, t := range sweep.TimesSec {
			if math.IsNaN(t) {
				data[i] = opts.LineData{Value: "-"}
			} else {
				data[i] = opts.LineData{Value: t}
			}
		}
		line.AddSeries(sweep.Backend, data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(f)
}
