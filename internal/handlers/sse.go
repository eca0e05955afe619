package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/format"
	"urbanmart-dashboard/internal/models"
	"urbanmart-dashboard/internal/observability"
	"urbanmart-dashboard/internal/services"
	"urbanmart-dashboard/internal/ui/templates"
)

// dashboardSignals is the Datastar signal state the page sends with every
// request: the shared filters plus the trend granularity.
type dashboardSignals struct {
	services.Query
	Granularity string `json:"granularity"`
}

type chartPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

func points(rows []models.GroupResult) []chartPoint {
	out := make([]chartPoint, len(rows))
	for i, r := range rows {
		out[i] = chartPoint{Label: r.Label, Revenue: r.Revenue}
	}
	return out
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read signals", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}

	sse := datastar.NewSSE(w, r)
	h.patchOverview(r.Context(), sse, signals)
	flush(w)
}

// HandleRefreshAll reloads the source before re-rendering, so edits to the
// CSV on disk show up without a restart.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read signals", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}

	sse := datastar.NewSSE(w, r)
	if _, err := h.analytics.Reload(r.Context()); err != nil {
		h.logger.Error("reload source", "error", err, "request_id", observability.GetRequestID(r.Context()))
		h.patch(r.Context(), sse, templates.Warning(message(err)))
		flush(w)
		return
	}
	h.patchOverview(r.Context(), sse, signals)
	flush(w)
}

func (h *SSEHandlers) patchOverview(ctx context.Context, sse *datastar.ServerSentEventGenerator, signals dashboardSignals) {
	ov, err := h.analytics.Overview(ctx, signals.Query, signals.Granularity)
	switch {
	case err == nil:
		h.patch(ctx, sse, templates.Warning(""))
	case errors.HasCode(err, errors.CodeEmptyResult):
		ov = &services.Overview{}
		h.patch(ctx, sse, templates.Warning(message(err)))
	default:
		h.logger.Warn("overview failed", "error", err, "request_id", observability.GetRequestID(ctx))
		h.patch(ctx, sse, templates.Warning(message(err)))
		return
	}

	h.patch(ctx, sse,
		templates.KPICards(ov.Summary),
		templates.GroupTable(templates.TrendID, "Revenue Trend", "period", ov.Trend),
		templates.GroupTable(templates.StoresID, "Revenue by Store", "store_location", ov.Stores),
		templates.GroupTable(templates.CategoriesID, "Revenue by Category", "product_category", ov.Categories),
		templates.GroupTable(templates.ChannelsID, "Revenue by Channel", "channel", ov.Channels),
		templates.GroupTable(templates.SegmentsID, "Revenue by Segment", "customer_segment", ov.Segments),
		templates.GroupTable(templates.PaymentsID, "Revenue by Payment Method", "payment_method", ov.Payments),
		templates.GroupTable(templates.DayOfWeekID, "Revenue by Day of Week", "day_of_week", ov.DayOfWeek),
		templates.GroupTable(templates.TopProductsID, "Top Products", "product_name", ov.TopProducts),
		templates.GroupTable(templates.BottomProductsID, "Bottom Products", "product_name", ov.BottomProducts),
		templates.GroupTable(templates.TopCustomersID, "Top Customers", "customer_id", ov.TopCustomers),
		templates.BasketTable(templates.BasketsID, "Basket Size by Segment", ov.Baskets),
	)

	if stats := h.analytics.Stats(); stats.LoadedAt != nil {
		h.patch(ctx, sse, templates.Status(stats.Source, stats.Rows, format.Since(*stats.LoadedAt)))
	}

	chartData, err := json.Marshal(map[string]any{
		"trendData":    points(ov.Trend),
		"storeData":    points(ov.Stores),
		"categoryData": points(ov.Categories),
		"weekdayData":  points(ov.DayOfWeek),
	})
	if err != nil {
		h.logger.Error("marshal chart data", "error", err)
		return
	}
	if err := sse.PatchSignals(chartData); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator, components ...templ.Component) {
	for _, c := range components {
		html, err := templates.RenderString(ctx, c)
		if err != nil {
			h.logger.Error("render component", "error", err)
			continue
		}
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch elements", "error", err)
			return
		}
	}
}

func message(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.Details != "" && appErr.Code != errors.CodeDataFormat {
			return appErr.Message + ": " + appErr.Details
		}
		return appErr.Message
	}
	return "An unexpected error occurred"
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
