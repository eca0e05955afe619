package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"urbanmart-dashboard/internal/engine"
	"urbanmart-dashboard/internal/models"
)

const (
	DefaultWorkers   = 4
	DefaultBatchSize = 5000
)

type Options struct {
	Workers   int
	BatchSize int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Load parses a snapshot and derives every row into a read-only table.
// Batches are derived in parallel; row order is preserved.
func Load(ctx context.Context, snap Snapshot, opts Options, logger *slog.Logger) (*engine.Table, error) {
	opts = opts.withDefaults()
	start := time.Now()

	records, err := ReadRecords(snap.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", snap.Name, err)
	}

	items := make([]engine.LineItem, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for lo := 0; lo < len(records); lo += opts.BatchSize {
		hi := min(lo+opts.BatchSize, len(records))
		g.Go(func() error {
			return deriveBatch(ctx, records[lo:hi], items[lo:hi], lo)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", snap.Name, err)
	}

	duration := time.Since(start)
	logger.Info("source table derived",
		"source", snap.Name,
		"identity", snap.Identity,
		"rows", len(items),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f rows/sec", float64(len(items))/duration.Seconds()))

	return engine.NewTable(snap.Identity, items), nil
}

func deriveBatch(ctx context.Context, in []models.RawRecord, out []engine.LineItem, offset int) error {
	for i, rec := range in {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		li, err := engine.DeriveRecord(rec)
		if err != nil {
			return fmt.Errorf("row %d: %w", offset+i+1, err)
		}
		out[i] = li
	}
	return nil
}
