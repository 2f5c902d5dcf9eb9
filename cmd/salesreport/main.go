package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"sales-insights/internal/charts"
	"sales-insights/internal/config"
	"sales-insights/internal/dataset"
	"sales-insights/internal/observability"
	"sales-insights/internal/pipeline"
	"sales-insights/internal/render"
	"sales-insights/internal/reports"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	runID := observability.NewRunID()
	logger := observability.NewLogger(cfg.Logger).With("run_id", runID)
	slog.SetDefault(logger)

	logger.Info("starting sales report run",
		"input", cfg.Input.CSVFile,
		"output_dir", cfg.Output.Dir,
	)

	specs, err := loadSpecs(cfg)
	if err != nil {
		logger.Error("failed to load report definitions", "error", err)
		return 1
	}

	ctx := observability.WithRunID(context.Background(), runID)

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Input.LoadTimeout)
	defer cancel()

	start := time.Now()
	ds, err := dataset.NewLoader(logger).Load(loadCtx, cfg.Input.CSVFile)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		return 1
	}
	logger.Info("dataset ready",
		"rows", ds.Stats.RowsLoaded,
		"rejected", ds.Stats.RowsRejected,
		"customers", ds.Stats.DistinctCustomers,
		"total_sales", ds.Stats.TotalSales,
		"first_order", ds.Stats.FirstOrderDate.Format("2006-01-02"),
		"last_order", ds.Stats.LastOrderDate.Format("2006-01-02"),
		"duration", time.Since(start),
	)

	p := pipeline.New(
		specs,
		charts.NewRenderer(logger),
		render.NewTableWriter(os.Stdout),
		logger,
		cfg.Output.Dir,
		cfg.Reports.Workers,
	)

	results, err := p.Run(ctx, ds)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		return 1
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("run finished with failed reports", "failed", failed, "total", len(results))
		return 1
	}

	logger.Info("run finished", "reports", len(results), "output_dir", cfg.Output.Dir)
	return 0
}

func loadSpecs(cfg *config.Config) ([]reports.Spec, error) {
	if cfg.Reports.File != "" {
		return reports.LoadFile(cfg.Reports.File)
	}
	return reports.Defaults(cfg.Reports.TopN), nil
}
