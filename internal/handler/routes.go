package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-proxy-go/internal/config"
	"service-proxy-go/internal/metrics"
)

// proxyMethods are the methods accepted on proxy routes.
var proxyMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
}

// proxyPrefixes mount the proxy handler. /api/v2 is kept for older clients.
var proxyPrefixes = []string{"/proxy", "/api/v2"}

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, proxy *ProxyHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/status", health.Status)

	for _, prefix := range proxyPrefixes {
		e.Match(proxyMethods, prefix, proxy.Handle)
		e.Match(proxyMethods, prefix+"/*", proxy.Handle)
	}
}

// RegisterMetrics exposes the Prometheus registry when metrics are enabled.
func RegisterMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
