package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"urbanmart-dashboard/internal/dataset"
	"urbanmart-dashboard/internal/engine"
	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/metrics"
)

const DefaultMaxSources = 8

// LoadFunc turns a snapshot into a derived table.
type LoadFunc func(ctx context.Context, snap dataset.Snapshot) (*engine.Table, error)

// Cache memoizes derived tables by source identity. Concurrent requests for
// the same identity share one load; tables are read-only once stored.
type Cache struct {
	tables  *lru.Cache[string, *engine.Table]
	flight  singleflight.Group
	load    LoadFunc
	logger  *slog.Logger
	metrics *metrics.Metrics

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
}

func New(maxSources int, load LoadFunc, logger *slog.Logger, m *metrics.Metrics) (*Cache, error) {
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}
	c := &Cache{load: load, logger: logger, metrics: m}

	tables, err := lru.NewWithEvict[string, *engine.Table](maxSources, func(identity string, _ *engine.Table) {
		c.logger.Debug("derived table evicted", "identity", identity)
	})
	if err != nil {
		return nil, fmt.Errorf("create table cache: %w", err)
	}
	c.tables = tables
	return c, nil
}

// GetOrLoad returns the table for src's current content, loading it on the
// first request for that identity.
func (c *Cache) GetOrLoad(ctx context.Context, src dataset.Source) (*engine.Table, error) {
	snap, err := dataset.Take(src)
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	if table, ok := c.tables.Get(snap.Identity); ok {
		c.hits.Add(1)
		c.metrics.CacheHits.Inc()
		c.logger.Debug("derived table cache hit", "source", snap.Name, "identity", snap.Identity)
		return table, nil
	}

	ch := c.flight.DoChan(snap.Identity, func() (any, error) {
		if table, ok := c.tables.Get(snap.Identity); ok {
			return table, nil
		}

		c.misses.Add(1)
		c.metrics.CacheMisses.Inc()

		start := time.Now()
		table, err := c.load(context.WithoutCancel(ctx), snap)
		if err != nil {
			return nil, err
		}
		duration := time.Since(start)

		c.loads.Add(1)
		c.tables.Add(snap.Identity, table)
		c.metrics.LoadDuration.Observe(duration.Seconds())
		c.metrics.RowsLoaded.Set(float64(table.Len()))
		c.metrics.CacheEntries.Set(float64(c.tables.Len()))
		c.logger.Info("derived table cached",
			"source", snap.Name,
			"identity", snap.Identity,
			"rows", table.Len(),
			"duration", duration)
		return table, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.recordFailure(res.Err)
			return nil, res.Err
		}
		return res.Val.(*engine.Table), nil
	}
}

func (c *Cache) recordFailure(err error) {
	code := "unknown"
	for _, candidate := range []errors.ErrorCode{errors.CodeSourceNotFound, errors.CodeDataFormat, errors.CodeInternal} {
		if errors.HasCode(err, candidate) {
			code = string(candidate)
			break
		}
	}
	c.metrics.LoadFailures.WithLabelValues(code).Inc()
	c.logger.Error("source load failed", "error", err, "code", code)
}

// Purge drops every cached table. The next GetOrLoad reloads from source.
func (c *Cache) Purge() {
	c.tables.Purge()
	c.metrics.CacheEntries.Set(0)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.tables.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
	}
}
