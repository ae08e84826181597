package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/jedib0t/go-pretty/v6/table"

	"hnscrape/internal/domain"
	"hnscrape/internal/storage"
)

// Generator builds the comparison report from persisted artifacts only. It
// never mutates the source data and recomputes every aggregate on each
// invocation.
type Generator struct {
	store *storage.Store
	out   io.Writer
}

func NewGenerator(store *storage.Store, out io.Writer) *Generator {
	if out == nil {
		out = os.Stdout
	}
	return &Generator{store: store, out: out}
}

// Metrics recomputes per-method aggregates from the persisted event logs,
// taking only the wall-clock window from the metrics CSV.
func (g *Generator) Metrics() ([]domain.AggregateMetrics, error) {
	times, order, err := g.store.LoadRunTimes()
	if err != nil {
		return nil, fmt.Errorf("load run times: %w", err)
	}
	var metrics []domain.AggregateMetrics
	for _, method := range order {
		events, err := g.store.LoadEvents(method)
		if err != nil {
			return nil, fmt.Errorf("load %s events: %w", method, err)
		}
		metrics = append(metrics, Compute(method, times[method], events))
	}
	return metrics, nil
}

// Generate writes the chart report to path and mirrors the summary table to
// the generator's output writer.
func (g *Generator) Generate(path string) error {
	metrics, err := g.Metrics()
	if err != nil {
		return err
	}
	rec, err := Recommend(metrics)
	if err != nil {
		return err
	}

	g.renderTable(metrics, rec)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	return g.renderCharts(f, metrics, rec)
}

func (g *Generator) renderTable(metrics []domain.AggregateMetrics, rec Recommendation) {
	t := table.NewWriter()
	t.SetOutputMirror(g.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Method", "Total Time (s)", "Requests", "Bytes", "Avg Latency (ms)"})
	for _, m := range metrics {
		t.AppendRow(table.Row{
			m.Method,
			fmt.Sprintf("%.2f", m.TotalTimeS),
			m.RequestCount,
			fmt.Sprintf("%.1f KB", float64(m.TotalBytes)/1024),
			fmt.Sprintf("%.1f", m.AvgLatencyMS),
		})
	}
	t.Render()
	fmt.Fprintln(g.out, rec.Narrative())
}

func (g *Generator) renderCharts(w io.Writer, metrics []domain.AggregateMetrics, rec Recommendation) error {
	var methods []string
	var runtimes, bytes, latencies []opts.BarData
	for _, m := range metrics {
		methods = append(methods, string(m.Method))
		runtimes = append(runtimes, opts.BarData{Value: m.TotalTimeS})
		bytes = append(bytes, opts.BarData{Value: float64(m.TotalBytes) / 1024})
		latencies = append(latencies, opts.BarData{Value: m.AvgLatencyMS})
	}

	runtimeBar := charts.NewBar()
	runtimeBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Total Runtime by Method",
			Subtitle: rec.Narrative(),
		}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	runtimeBar.SetXAxis(methods).AddSeries("seconds", runtimes)

	bytesBar := charts.NewBar()
	bytesBar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Bandwidth Consumed by Method"}))
	bytesBar.SetXAxis(methods).AddSeries("kilobytes", bytes)

	latencyBar := charts.NewBar()
	latencyBar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Average Request Latency by Method"}))
	latencyBar.SetXAxis(methods).AddSeries("milliseconds", latencies)

	page := components.NewPage()
	page.AddCharts(runtimeBar, bytesBar, latencyBar)
	return page.Render(w)
}
