package bench

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/colorfulnotion/kernelbench/cloud"
	"github.com/colorfulnotion/kernelbench/kernel"
	log "github.com/colorfulnotion/kernelbench/log"
)

// ChartConfig holds configuration for chart generation
type ChartConfig struct {
	OutputDir string
	Width     vg.Length
	Height    vg.Length
}

// DefaultChartConfig returns default chart configuration
func DefaultChartConfig() *ChartConfig {
	return &ChartConfig{
		OutputDir: "output",
		Width:     12 * vg.Inch,
		Height:    8 * vg.Inch,
	}
}

var backendColorMap = map[string]color.RGBA{
	kernel.BackendTensorized: {R: 66, G: 133, B: 244, A: 255},
	kernel.BackendOnline:     {R: 219, G: 68, B: 55, A: 255},
}

var backendFallbackColors = []color.RGBA{
	{R: 15, G: 157, B: 88, A: 255},
	{R: 171, G: 71, B: 188, A: 255},
	{R: 0, G: 172, B: 193, A: 255},
	{R: 102, G: 102, B: 102, A: 255},
}

func backendColor(backend string, fallbackIndex int) color.Color {
	if c, ok := backendColorMap[backend]; ok {
		return c
	}
	return backendFallbackColors[fallbackIndex%len(backendFallbackColors)]
}

// GenerateAllCharts writes the runtime, speedup and HTML charts under
// config.OutputDir.
func GenerateAllCharts(rep *Report, config *ChartConfig) error {
	if config == nil {
		config = DefaultChartConfig()
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	runtimeChart := filepath.Join(config.OutputDir, "runtime.png")
	if err := GenerateRuntimeChart(rep, config, runtimeChart); err != nil {
		return fmt.Errorf("failed to generate runtime chart: %w", err)
	}
	log.Info(log.ChartMonitoring, "generated chart", "file", runtimeChart)

	if len(rep.Backends) >= 2 {
		speedupChart := filepath.Join(config.OutputDir, "speedup.png")
		if err := GenerateSpeedupChart(rep, config, speedupChart, rep.Backends[0], rep.Backends[1]); err != nil {
			return fmt.Errorf("failed to generate speedup chart: %w", err)
		}
		log.Info(log.ChartMonitoring, "generated chart", "file", speedupChart)
	}

	htmlChart := filepath.Join(config.OutputDir, "runtime.html")
	if err := GenerateHTMLChart(rep, htmlChart); err != nil {
		return fmt.Errorf("failed to generate html chart: %w", err)
	}
	log.Info(log.ChartMonitoring, "generated chart", "file", htmlChart)

	return nil
}

// GenerateRuntimeChart creates the log-log line chart of mean runtime per
// backend against problem size. Aborted sweeps are annotated above their
// last finite point.
func GenerateRuntimeChart(rep *Report, config *ChartConfig, filename string) error {
	if config == nil {
		config = DefaultChartConfig()
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Runtime for Gaussian matrix-vector products in dimension %d", cloud.Dim)
	p.X.Label.Text = "Number of samples"
	p.Y.Label.Text = "Seconds"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	sizes := rep.Config.Sizes
	if len(sizes) > 0 {
		p.X.Min = float64(sizes[0])
		p.X.Max = float64(sizes[len(sizes)-1])
	}
	p.Y.Min = 1e-4
	p.Y.Max = rep.Config.MaxTime.Seconds()

	for i, sweep := range rep.Sweeps {
		pts := finitePoints(sizes, sweep.TimesSec)
		if len(pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		c := backendColor(sweep.Backend, i)
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c
		points.Radius = vg.Points(4)

		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("backend = %q", sweep.Backend), line, points)

		if sweep.Abort != AbortNone {
			last := pts[len(pts)-1]
			labels, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    []plotter.XY{{X: last.X, Y: 1.05 * last.Y}},
				Labels: []string{sweep.Abort.Label()},
			})
			if err != nil {
				return err
			}
			p.Add(labels)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	return p.Save(config.Width, config.Height, filename)
}

// GenerateSpeedupChart creates a speedup plot for baseBackend/compareBackend.
func GenerateSpeedupChart(rep *Report, config *ChartConfig, filename, baseBackend, compareBackend string) error {
	if config == nil {
		config = DefaultChartConfig()
	}

	var base, compare []float64
	for _, sweep := range rep.Sweeps {
		if sweep.Backend == baseBackend {
			base = sweep.TimesSec
		}
		if sweep.Backend == compareBackend {
			compare = sweep.TimesSec
		}
	}
	if base == nil || compare == nil {
		return fmt.Errorf("backends %s and %s not both present in report", baseBackend, compareBackend)
	}

	var pts plotter.XYs
	for i, n := range rep.Config.Sizes {
		if math.IsNaN(base[i]) || math.IsNaN(compare[i]) || compare[i] == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(n), Y: base[i] / compare[i]})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Speedup: %s / %s", baseBackend, compareBackend)
	p.X.Label.Text = "Number of samples"
	p.Y.Label.Text = "Speedup (x)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	c := backendColor(baseBackend, 0)
	line.Color = c
	line.Width = vg.Points(2)
	points.Color = c
	points.Radius = vg.Points(4)

	p.Add(line, points)
	p.Add(plotter.NewGrid())
	return p.Save(config.Width, config.Height, filename)
}

func finitePoints(sizes []int, times []float64) plotter.XYs {
	var pts plotter.XYs
	for i, n := range sizes {
		if i >= len(times) || math.IsNaN(times[i]) || times[i] <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(n), Y: times[i]})
	}
	return pts
}
