package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"service-proxy-go/internal/config"
	"service-proxy-go/internal/metrics"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	e, _ := newTestEcho(t, upstream.URL)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"GET /status", http.MethodGet, "/status", http.StatusOK},
		{"GET /proxy/github/users", http.MethodGet, "/proxy/github/users?since=1", http.StatusOK},
		{"POST /proxy/github/gists", http.MethodPost, "/proxy/github/gists", http.StatusOK},
		{"PUT /proxy/github/x", http.MethodPut, "/proxy/github/x", http.StatusOK},
		{"PATCH /proxy/github/x", http.MethodPatch, "/proxy/github/x", http.StatusOK},
		{"DELETE /proxy/github/x", http.MethodDelete, "/proxy/github/x", http.StatusOK},
		{"GET /api/v2/coingecko/ping", http.MethodGet, "/api/v2/coingecko/ping", http.StatusOK},
		{"GET /proxy without service", http.MethodGet, "/proxy", http.StatusBadRequest},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterMetrics(t *testing.T) {
	m := metrics.New()
	m.RequestsTotal.WithLabelValues("GET", "200", "/proxy").Inc()

	t.Run("enabled", func(t *testing.T) {
		e := echo.New()
		RegisterMetrics(e, &config.Config{Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"}}, m)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), "service_proxy_http_requests_total") {
			t.Error("expected service_proxy_http_requests_total in exposition")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		e := echo.New()
		RegisterMetrics(e, &config.Config{Metrics: config.MetricsConfig{Enabled: false, Path: "/metrics"}}, m)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
