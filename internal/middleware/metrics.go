package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"service-proxy-go/internal/metrics"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request. Requests whose path is listed in skip (typically
// the scrape endpoint) are not recorded.
func MetricsMiddleware(m *metrics.Metrics, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipped[c.Request().URL.Path] {
				return next(c)
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			m.RequestsTotal.WithLabelValues(labels(c, err)...).Inc()
			m.RequestDuration.WithLabelValues(labels(c, err)...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// labels returns method, status_code and path_prefix for the request.
// An *echo.HTTPError returned by the handler has not been written yet, so its
// code is used in place of the response status.
func labels(c echo.Context, err error) []string {
	status := c.Response().Status
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		} else if !c.Response().Committed {
			status = http.StatusInternalServerError
		}
	}
	return []string{
		metrics.NormalizeMethod(c.Request().Method),
		strconv.Itoa(status),
		metrics.NormalizePath(c.Request().URL.Path),
	}
}
