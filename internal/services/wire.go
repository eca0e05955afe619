package services

import (
	"context"
	"log/slog"

	"urbanmart-dashboard/internal/cache"
	"urbanmart-dashboard/internal/config"
	"urbanmart-dashboard/internal/dataset"
	"urbanmart-dashboard/internal/engine"
	"urbanmart-dashboard/internal/metrics"
)

// NewFromConfig builds the facade over the configured CSV file with a table
// cache sized and tuned from cfg.Cache.
func NewFromConfig(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*Analytics, error) {
	opts := dataset.Options{
		Workers:   cfg.Cache.LoadWorkers,
		BatchSize: cfg.Cache.LoadBatchSize,
	}
	load := func(ctx context.Context, snap dataset.Snapshot) (*engine.Table, error) {
		return dataset.Load(ctx, snap, opts, logger)
	}

	tables, err := cache.New(cfg.Cache.MaxSources, load, logger, m)
	if err != nil {
		return nil, err
	}
	return NewAnalytics(dataset.File(cfg.Database.CSVFile), tables, m, logger), nil
}
