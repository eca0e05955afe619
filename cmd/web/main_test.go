package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbanmart-dashboard/internal/config"
	"urbanmart-dashboard/internal/metrics"
	"urbanmart-dashboard/internal/services"
)

const sample = "transaction_id,bill_id,date,store_id,store_location,customer_id,customer_segment,product_id,product_category,product_name,quantity,unit_price,payment_method,discount_applied,channel\n" +
	"T1,B1,2025-01-06,S1,Downtown,C1,Regular,P1,Grocery,Rice,2,10,Cash,0,In-store\n" +
	"T2,B2,2025-01-07,S2,Uptown,C2,Student,P3,Grocery,Milk,3,2,UPI,0,Online\n"

type testApp struct {
	handler   http.Handler
	analytics *services.Analytics
	metrics   *metrics.Metrics
}

func newTestApp(t *testing.T, overrides map[string]any) testApp {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	v := viper.New()
	v.Set("database.csv_file", path)
	v.Set("security.rate_limit_enabled", false)
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	m := metrics.New()
	analytics, err := services.NewFromConfig(cfg, m, logger)
	require.NoError(t, err)

	return testApp{
		handler:   newHandler(cfg, analytics, m, logger),
		analytics: analytics,
		metrics:   m,
	}
}

func (a testApp) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		req.Header[k] = vs
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func TestServer_Routes(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/admin/stats", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/options", http.StatusOK},
		{http.MethodGet, "/api/summary", http.StatusOK},
		{http.MethodGet, "/api/breakdown?group_by=channel", http.StatusOK},
		{http.MethodGet, "/api/top", http.StatusOK},
		{http.MethodGet, "/api/trend?granularity=weekly", http.StatusOK},
		{http.MethodGet, "/api/baskets", http.StatusOK},
		{http.MethodGet, "/api/export?group_by=store_location", http.StatusOK},
		{http.MethodGet, "/sse/overview", http.StatusOK},
		{http.MethodPost, "/admin/reload", http.StatusOK},
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
		{http.MethodPost, "/api/summary", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := app.do(tt.method, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestServer_MiddlewareHeaders(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodGet, "/api/summary", http.Header{"X-Request-Id": {"req-42"}})

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Revenue float64 `json:"line_revenue"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.InDelta(t, 26.0, response.Data.Revenue, 1e-9)
}

func TestServer_MetricsRecordRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	app.do(http.MethodGet, "/api/summary", nil)
	app.do(http.MethodGet, "/api/summary?stores=Nowhere", nil)

	w := app.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `urbanmart_http_requests_total{code="200",method="GET",route="GET /api/summary"} 2`)
	assert.Contains(t, body, `urbanmart_empty_results_total{view="summary"} 1`)
	assert.Contains(t, body, "urbanmart_cache_hits_total")
}

func TestServer_MetricsDisabled(t *testing.T) {
	app := newTestApp(t, map[string]any{"metrics.enabled": false})

	w := app.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CSRFBlocksCrossOriginReload(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodPost, "/admin/reload", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/admin/reload", http.Header{"Origin": {"http://localhost:8084"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RateLimit(t *testing.T) {
	app := newTestApp(t, map[string]any{
		"security.rate_limit_enabled": true,
		"security.rate_limit_rps":     1,
		"security.rate_limit_burst":   2,
	})

	codes := make([]int, 0, 4)
	for range 4 {
		codes = append(codes, app.do(http.MethodGet, "/health", nil).Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestDashboardTemplate(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "UrbanMart Sales Dashboard")
	assert.Contains(t, body, `<option value="Uptown">Uptown</option>`)
	assert.Contains(t, body, "2025-01-06")
}

func TestDashboardMissingSource(t *testing.T) {
	app := newTestApp(t, nil)
	path := app.analytics.Stats().Source
	require.NoError(t, os.Remove(path))
	_, err := app.analytics.Reload(context.Background())
	require.Error(t, err)

	w := app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
