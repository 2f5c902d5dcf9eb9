package charts

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"sales-insights/internal/analytics"
	"sales-insights/internal/errors"
	"sales-insights/internal/reports"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

// Renderer writes summary charts as PNG files. It is an opaque sink: nothing
// downstream reads the images back.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render writes the chart for one summary and returns the output path.
func (r *Renderer) Render(spec reports.Spec, summary analytics.Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.RenderWrap(err, "create output directory")
	}

	path := filepath.Join(dir, spec.Output+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", errors.RenderWrap(err, "create chart file")
	}
	defer file.Close()

	switch spec.Chart {
	case reports.ChartBar:
		err = r.renderBar(spec, summary, file)
	case reports.ChartLine:
		err = r.renderLine(spec, summary, file)
	case reports.ChartPie:
		err = r.renderPie(spec, summary, file)
	case reports.ChartStackedBar:
		err = r.renderStackedBar(spec, summary, file)
	default:
		err = fmt.Errorf("unknown chart type %q", spec.Chart)
	}
	if err != nil {
		return "", errors.RenderWrap(err, fmt.Sprintf("render %s chart %q", spec.Chart, spec.Name))
	}

	r.logger.Debug("chart written", "report", spec.Name, "path", path)
	return path, nil
}

// values extracts plottable measure values, dropping groups whose measure is
// undefined (empty partitions under the avg measure).
func values(spec reports.Spec, summary analytics.Summary) []chart.Value {
	key := reports.SortKeyFor(spec.Measure)
	out := make([]chart.Value, 0, len(summary.Groups))
	for _, g := range summary.Groups {
		v, ok := g.Value(key)
		if !ok {
			continue
		}
		out = append(out, chart.Value{Value: v, Label: g.Key})
	}
	return out
}

func (r *Renderer) renderBar(spec reports.Spec, summary analytics.Summary, w io.Writer) error {
	bars := values(spec, summary)
	if len(bars) == 0 {
		return fmt.Errorf("no plottable groups")
	}

	bc := chart.BarChart{
		Title:    spec.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Bars:     bars,
	}
	return bc.Render(chart.PNG, w)
}

func (r *Renderer) renderLine(spec reports.Spec, summary analytics.Summary, w io.Writer) error {
	points := values(spec, summary)
	if len(points) < 2 {
		return fmt.Errorf("line chart needs at least two points, got %d", len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Value
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}

	lc := chart.Chart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.Title, XValues: xs, YValues: ys},
		},
	}
	return lc.Render(chart.PNG, w)
}

func (r *Renderer) renderPie(spec reports.Spec, summary analytics.Summary, w io.Writer) error {
	slices := values(spec, summary)
	if len(slices) == 0 {
		return fmt.Errorf("no plottable groups")
	}

	var total float64
	for _, s := range slices {
		total += s.Value
	}
	if total > 0 {
		for i := range slices {
			slices[i].Label = fmt.Sprintf("%s (%.1f%%)", slices[i].Label, slices[i].Value/total*100)
		}
	}

	pc := chart.PieChart{
		Title:  spec.Title,
		Width:  chartHeight, // square canvas
		Height: chartHeight,
		Values: slices,
	}
	return pc.Render(chart.PNG, w)
}

// renderStackedBar draws one bar per primary key with segments for each
// sub-key, normalized to percentage shares so bars are comparable across
// keys with different totals.
func (r *Renderer) renderStackedBar(spec reports.Spec, summary analytics.Summary, w io.Writer) error {
	keys := analytics.Keys(summary)
	subKeys := analytics.SubKeys(summary)
	if len(keys) == 0 || len(subKeys) == 0 {
		return fmt.Errorf("stacked bar chart needs two populated dimensions")
	}

	measure := reports.SortKeyFor(spec.Measure)
	cells := make(map[string]map[string]float64, len(keys))
	totals := make(map[string]float64, len(keys))
	for _, g := range summary.Groups {
		v, ok := g.Value(measure)
		if !ok {
			continue
		}
		if cells[g.Key] == nil {
			cells[g.Key] = make(map[string]float64, len(subKeys))
		}
		cells[g.Key][g.SubKey] += v
		totals[g.Key] += v
	}

	bars := make([]chart.StackedBar, 0, len(keys))
	for _, key := range keys {
		if totals[key] <= 0 {
			continue
		}
		segments := make([]chart.Value, 0, len(subKeys))
		for _, subKey := range subKeys {
			share := cells[key][subKey] / totals[key] * 100
			segments = append(segments, chart.Value{
				Value: share,
				Label: fmt.Sprintf("%s %.0f%%", subKey, share),
			})
		}
		bars = append(bars, chart.StackedBar{Name: key, Values: segments})
	}
	if len(bars) == 0 {
		return fmt.Errorf("no plottable groups")
	}

	sbc := chart.StackedBarChart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Bars:   bars,
	}
	return sbc.Render(chart.PNG, w)
}
