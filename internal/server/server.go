package server

import (
	"log/slog"
	"net/http"

	"urbanmart-dashboard/internal/handlers"
	"urbanmart-dashboard/internal/metrics"
	"urbanmart-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer registers every route. m may be nil, in which case /metrics is
// not exposed.
func NewServer(analytics *services.Analytics, m *metrics.Metrics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers, m)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, m *metrics.Metrics) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)
	if m != nil {
		s.mux.Handle("GET /metrics", m.Handler())
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/breakdown", s.apiHandlers.HandleBreakdown)
	s.mux.HandleFunc("GET /api/top", s.apiHandlers.HandleTop)
	s.mux.HandleFunc("GET /api/trend", s.apiHandlers.HandleTrend)
	s.mux.HandleFunc("GET /api/baskets", s.apiHandlers.HandleBaskets)
	s.mux.HandleFunc("GET /api/export", s.apiHandlers.HandleExport)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
