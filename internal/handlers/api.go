package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/export"
	"urbanmart-dashboard/internal/observability"
	"urbanmart-dashboard/internal/services"
)

const version = "1.0.0"

var cacheHeaders = map[string]string{
	"Cache-Control": "private, max-age=60",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// respond writes data, or the error envelope. An EMPTY_RESULT warning is a
// 200 carrying the warning so widgets can show it in place.
func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.analytics.Options(r.Context())
	h.respond(w, r, opts, err)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context(), services.QueryFromValues(r.URL.Query()))
	h.respond(w, r, summary, err)
}

func breakdownFrom(r *http.Request) (services.Breakdown, error) {
	v := r.URL.Query()
	limit, err := services.ParseLimit("limit", v.Get("limit"), 0)
	if err != nil {
		return services.Breakdown{}, err
	}
	return services.Breakdown{
		GroupBy: v.Get("group_by"),
		Measure: v.Get("measure"),
		Order:   v.Get("order"),
		Limit:   limit,
	}, nil
}

func (h *APIHandlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := breakdownFrom(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rows, err := h.analytics.Breakdown(r.Context(), services.QueryFromValues(r.URL.Query()), b)
	h.respond(w, r, rows, err)
}

func (h *APIHandlers) HandleTop(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	n, err := services.ParseLimit("n", v.Get("n"), services.DefaultTopN)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	groupBy := v.Get("group_by")
	if groupBy == "" {
		groupBy = "product_name"
	}
	rows, err := h.analytics.TopN(r.Context(), services.QueryFromValues(v), groupBy, v.Get("measure"), n, v.Get("order"))
	h.respond(w, r, rows, err)
}

func (h *APIHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	rows, err := h.analytics.Trend(r.Context(), services.QueryFromValues(v), v.Get("granularity"), v.Get("split"))
	h.respond(w, r, rows, err)
}

func (h *APIHandlers) HandleBaskets(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	groupBy := v.Get("group_by")
	if groupBy == "" {
		groupBy = "customer_segment"
	}
	rows, err := h.analytics.Baskets(r.Context(), services.QueryFromValues(v), groupBy, v.Get("basket"))
	h.respond(w, r, rows, err)
}

// HandleExport streams a breakdown as a CSV or XLSX attachment. An empty
// selection still yields a file with just the header row.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f, err := export.ParseFormat(v.Get("format"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := breakdownFrom(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows, err := h.analytics.Breakdown(r.Context(), services.QueryFromValues(v), b)
	if err != nil && !errors.HasCode(err, errors.CodeEmptyResult) {
		h.fail(w, r, err)
		return
	}

	dims := export.Dimensions(b.GroupBy)

	var buf bytes.Buffer
	if err := export.Groups(&buf, f, dims, rows); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "failed to build export"))
		return
	}

	name := "urbanmart_breakdown"
	if len(dims) > 0 {
		name += "_" + strings.Join(dims, "_")
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, name, f.Extension()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write interrupted", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()
	status := "healthy"
	if stats.LoadedAt == nil {
		status = "degraded"
	}

	errors.WriteSuccess(w, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
		"rows":      stats.Rows,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

// HandleReload purges the table cache and loads the source again.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	table, err := h.analytics.Reload(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("source reloaded",
		"identity", table.Identity(),
		"rows", table.Len(),
		"request_id", observability.GetRequestID(r.Context()),
	)
	errors.WriteSuccess(w, h.analytics.Stats())
}
