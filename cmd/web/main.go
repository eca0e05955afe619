package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"urbanmart-dashboard/internal/config"
	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/metrics"
	"urbanmart-dashboard/internal/middleware"
	"urbanmart-dashboard/internal/observability"
	"urbanmart-dashboard/internal/server"
	"urbanmart-dashboard/internal/services"
	"urbanmart-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "no-cache"
)

func handleDashboard(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		opts, err := analytics.Options(ctx)
		if err != nil {
			errors.WriteError(w, logger, err, observability.GetRequestID(ctx))
			return
		}

		w.Header().Set("Cache-Control", cacheMaxAge)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Dashboard(opts).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// newHandler wires the routes behind the middleware chain. Metrics must stay
// innermost so it sees the matched route pattern.
func newHandler(cfg *config.Config, analytics *services.Analytics, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	var exposed *metrics.Metrics
	if cfg.Metrics.Enabled {
		exposed = m
	}

	srv := server.NewServer(analytics, exposed, logger, &server.TemplateHandlers{
		Dashboard: handleDashboard(analytics, logger),
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.CSRF(cfg.Security, logger),
		middleware.Metrics(m),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"address", cfg.Address(),
		"csv_file", cfg.Database.CSVFile,
	)

	m := metrics.New()
	analytics, err := services.NewFromConfig(cfg, m, logger)
	if err != nil {
		logger.Error("failed to build analytics", "error", err)
		os.Exit(1)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	start := time.Now()
	table, err := analytics.Table(loadCtx)
	cancel()
	if err != nil {
		logger.Error("failed to load CSV data", "error", err)
		os.Exit(1)
	}
	logger.Info("CSV data loaded successfully",
		"rows", table.Len(),
		"identity", table.Identity(),
		"duration", time.Since(start),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, m, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		stats := analytics.Stats()
		logger.Info("shutting down analytics service",
			"cache_hits", stats.Cache.Hits,
			"cache_misses", stats.Cache.Misses,
		)
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		stop()
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
