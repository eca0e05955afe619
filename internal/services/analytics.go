package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"urbanmart-dashboard/internal/cache"
	"urbanmart-dashboard/internal/dataset"
	"urbanmart-dashboard/internal/engine"
	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/metrics"
	"urbanmart-dashboard/internal/models"
	"urbanmart-dashboard/internal/observability"
)

const (
	DefaultTopN       = 5
	overviewPanelSize = 10
)

// Analytics is the engine facade for the web and CLI collaborators. Every
// call resolves the table through the cache, so a changed source is picked
// up on the next request.
type Analytics struct {
	source  dataset.Source
	tables  *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu     sync.RWMutex
	latest *engine.Table
}

func NewAnalytics(source dataset.Source, tables *cache.Cache, m *metrics.Metrics, logger *slog.Logger) *Analytics {
	return &Analytics{
		source:  source,
		tables:  tables,
		metrics: m,
		logger:  logger,
	}
}

// Table returns the derived table for the current source content.
func (a *Analytics) Table(ctx context.Context) (*engine.Table, error) {
	table, err := a.tables.GetOrLoad(ctx, a.source)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.latest = table
	a.mu.Unlock()
	return table, nil
}

// Reload drops cached tables and loads the source again.
func (a *Analytics) Reload(ctx context.Context) (*engine.Table, error) {
	a.tables.Purge()
	return a.Table(ctx)
}

func (a *Analytics) Options(ctx context.Context) (models.FilterOptions, error) {
	table, err := a.Table(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return table.Options(), nil
}

// View filters the current table. A view with no rows comes back together
// with an EMPTY_RESULT warning; callers show it and skip aggregation.
func (a *Analytics) View(ctx context.Context, q Query) (*engine.View, error) {
	table, err := a.Table(ctx)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return table.All(), errors.EmptyResult()
	}

	criteria, err := q.Criteria(table)
	if err != nil {
		return nil, err
	}
	view, err := table.Filter(criteria)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return view, errors.EmptyResult()
	}
	return view, nil
}

// run times one panel query and keeps empty-result accounting in one place.
func run[T any](ctx context.Context, a *Analytics, name string, q Query, fn func(*engine.View) (T, error)) (T, error) {
	var zero T
	ctx, span := observability.StartSpan(ctx, "analytics."+name)
	defer span.End(a.logger)
	start := time.Now()
	defer func() {
		a.metrics.QueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	view, err := a.View(ctx, q)
	if err != nil {
		if errors.HasCode(err, errors.CodeEmptyResult) {
			a.metrics.EmptyResults.WithLabelValues(name).Inc()
			span.SetTag("empty", "true")
		} else {
			span.SetError(err)
		}
		return zero, err
	}
	span.SetTag("rows", strconv.Itoa(view.Len()))

	result, err := fn(view)
	if err != nil {
		span.SetError(err)
		return zero, err
	}
	return result, nil
}

func (a *Analytics) Summary(ctx context.Context, q Query) (models.Summary, error) {
	return run(ctx, a, "summary", q, func(v *engine.View) (models.Summary, error) {
		return v.Summary(), nil
	})
}

func (a *Analytics) Breakdown(ctx context.Context, q Query, b Breakdown) ([]models.GroupResult, error) {
	gq, err := b.groupQuery()
	if err != nil {
		return nil, err
	}
	return run(ctx, a, "breakdown", q, func(v *engine.View) ([]models.GroupResult, error) {
		return v.Aggregate(gq)
	})
}

// TopN returns the n best (or, with order "asc", worst) groups by measure.
func (a *Analytics) TopN(ctx context.Context, q Query, groupBy, measure string, n int, order string) ([]models.GroupResult, error) {
	dims, err := engine.ParseDimensions(groupBy)
	if err != nil {
		return nil, err
	}
	m, err := engine.ParseMeasure(measure)
	if err != nil {
		return nil, err
	}
	ascending, err := parseOrder(order)
	if err != nil {
		return nil, err
	}
	return run(ctx, a, "top", q, func(v *engine.View) ([]models.GroupResult, error) {
		return v.TopN(dims, m, n, ascending)
	})
}

func (a *Analytics) Trend(ctx context.Context, q Query, granularity, split string) ([]models.GroupResult, error) {
	g, err := engine.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}
	dims, err := engine.ParseDimensions(split)
	if err != nil {
		return nil, err
	}
	return run(ctx, a, "trend", q, func(v *engine.View) ([]models.GroupResult, error) {
		return v.Trend(g, dims...)
	})
}

func (a *Analytics) Baskets(ctx context.Context, q Query, groupBy, key string) ([]models.BasketResult, error) {
	dims, err := engine.ParseDimensions(groupBy)
	if err != nil {
		return nil, err
	}
	by, err := engine.ParseBasketKey(key)
	if err != nil {
		return nil, err
	}
	return run(ctx, a, "baskets", q, func(v *engine.View) ([]models.BasketResult, error) {
		return v.Baskets(dims, by)
	})
}

// Overview is every panel of the dashboard computed from one filtered view.
type Overview struct {
	Summary        models.Summary        `json:"summary"`
	Stores         []models.GroupResult  `json:"stores"`
	Categories     []models.GroupResult  `json:"categories"`
	Channels       []models.GroupResult  `json:"channels"`
	Segments       []models.GroupResult  `json:"segments"`
	Payments       []models.GroupResult  `json:"payments"`
	DayOfWeek      []models.GroupResult  `json:"day_of_week"`
	Trend          []models.GroupResult  `json:"trend"`
	TopProducts    []models.GroupResult  `json:"top_products"`
	BottomProducts []models.GroupResult  `json:"bottom_products"`
	TopCustomers   []models.GroupResult  `json:"top_customers"`
	Baskets        []models.BasketResult `json:"baskets"`
	Rows           int                   `json:"rows"`
}

// Overview computes the panels concurrently; the view is read-only so they
// share it without locking.
func (a *Analytics) Overview(ctx context.Context, q Query, granularity string) (*Overview, error) {
	g, err := engine.ParseGranularity(granularity)
	if err != nil {
		return nil, err
	}

	return run(ctx, a, "overview", q, func(v *engine.View) (*Overview, error) {
		ov := &Overview{Rows: v.Len(), Summary: v.Summary()}

		var eg errgroup.Group
		group := func(dst *[]models.GroupResult, dims ...engine.Dimension) {
			eg.Go(func() (err error) {
				*dst, err = v.Aggregate(engine.GroupQuery{GroupBy: dims})
				return err
			})
		}
		top := func(dst *[]models.GroupResult, dim engine.Dimension, ascending bool) {
			eg.Go(func() (err error) {
				*dst, err = v.TopN([]engine.Dimension{dim}, engine.MeasureRevenue, overviewPanelSize, ascending)
				return err
			})
		}

		group(&ov.Stores, engine.DimStore)
		group(&ov.Categories, engine.DimCategory)
		group(&ov.Channels, engine.DimChannel)
		group(&ov.Segments, engine.DimSegment)
		group(&ov.Payments, engine.DimPayment)
		group(&ov.DayOfWeek, engine.DimDayOfWeek)
		top(&ov.TopProducts, engine.DimProduct, false)
		top(&ov.BottomProducts, engine.DimProduct, true)
		top(&ov.TopCustomers, engine.DimCustomer, false)
		eg.Go(func() (err error) {
			ov.Trend, err = v.Trend(g)
			return err
		})
		eg.Go(func() (err error) {
			ov.Baskets, err = v.Baskets([]engine.Dimension{engine.DimSegment}, engine.BasketByBill)
			return err
		})

		if err := eg.Wait(); err != nil {
			return nil, err
		}
		return ov, nil
	})
}

type Stats struct {
	Source   string      `json:"source"`
	Identity string      `json:"identity,omitempty"`
	Rows     int         `json:"rows"`
	LoadedAt *time.Time  `json:"loaded_at,omitempty"`
	MinDate  string      `json:"min_date,omitempty"`
	MaxDate  string      `json:"max_date,omitempty"`
	Cache    cache.Stats `json:"cache"`
}

// Stats reports on the most recently resolved table without loading.
func (a *Analytics) Stats() Stats {
	a.mu.RLock()
	table := a.latest
	a.mu.RUnlock()

	s := Stats{Source: a.source.Name(), Cache: a.tables.Stats()}
	if table != nil {
		loaded := table.LoadedAt()
		opts := table.Options()
		s.Identity = table.Identity()
		s.Rows = table.Len()
		s.LoadedAt = &loaded
		s.MinDate = opts.MinDate
		s.MaxDate = opts.MaxDate
	}
	return s
}
