package pipeline

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"sales-insights/internal/analytics"
	"sales-insights/internal/dataset"
	"sales-insights/internal/errors"
	"sales-insights/internal/observability"
	"sales-insights/internal/reports"
)

// ChartRenderer writes a summary chart and returns the output path.
type ChartRenderer interface {
	Render(spec reports.Spec, summary analytics.Summary, dir string) (string, error)
}

// TableRenderer prints a summary to the console.
type TableRenderer interface {
	Write(spec reports.Spec, summary analytics.Summary) error
}

// Pipeline runs every configured report against one loaded dataset. Reports
// are independent: each is computed and rendered in isolation, and one
// failure never stops the others.
type Pipeline struct {
	specs   []reports.Spec
	charts  ChartRenderer
	tables  TableRenderer
	logger  *slog.Logger
	outDir  string
	workers int
}

func New(specs []reports.Spec, charts ChartRenderer, tables TableRenderer, logger *slog.Logger, outDir string, workers int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		specs:   specs,
		charts:  charts,
		tables:  tables,
		logger:  logger,
		outDir:  outDir,
		workers: workers,
	}
}

// ReportResult records the outcome of one report.
type ReportResult struct {
	Name    string
	Path    string
	Summary analytics.Summary
	Err     error
}

// Run computes and renders every report. The returned error is non-nil only
// when the run itself is cancelled; per-report failures live in the results.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) ([]ReportResult, error) {
	ctx, runSpan := observability.StartSpan(ctx, "pipeline.run")
	defer func() {
		runSpan.Finish()
		runSpan.Log(p.logger)
	}()
	runSpan.SetTag("reports", strconv.Itoa(len(p.specs)))
	if runID := observability.GetRunID(ctx); runID != "" {
		runSpan.SetTag("run_id", runID)
	}

	results := make([]ReportResult, len(p.specs))

	var eg errgroup.Group
	eg.SetLimit(p.workers)
	for i, spec := range p.specs {
		i, spec := i, spec
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = p.runReport(ctx, spec, ds)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		runSpan.SetError(err)
		return nil, err
	}

	// Console tables print sequentially so output order matches the
	// configured report order.
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		if err := p.tables.Write(p.specs[i], res.Summary); err != nil {
			results[i].Err = errors.RenderWrap(err, "write summary table")
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			errors.LogError(p.logger, res.Err)
		}
	}
	p.logger.Info("pipeline complete",
		"reports", len(results),
		"failed", failed,
	)

	return results, nil
}

func (p *Pipeline) runReport(ctx context.Context, spec reports.Spec, ds *dataset.Dataset) ReportResult {
	_, span := observability.StartSpan(ctx, "pipeline.report")
	span.SetTag("report", spec.Name)
	defer func() {
		span.Finish()
		span.Log(p.logger)
	}()

	res := ReportResult{Name: spec.Name}

	summary, err := reports.Compute(spec, ds.Transactions)
	if err != nil {
		span.SetError(err)
		res.Err = errors.InternalWrap(err, "compute report "+spec.Name)
		return res
	}
	res.Summary = summary

	path, err := p.charts.Render(spec, summary, p.outDir)
	if err != nil {
		span.SetError(err)
		res.Err = err
		return res
	}
	res.Path = path

	p.logger.Info("report complete",
		"report", spec.Name,
		"groups", len(summary.Groups),
		"chart", path,
	)
	return res
}
