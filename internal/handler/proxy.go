package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"service-proxy-go/internal/model"
	"service-proxy-go/internal/service"
)

// secretParamPattern matches credential-like query parameter values in URLs embedded in error messages.
var secretParamPattern = regexp.MustCompile(`(?i)((?:access_token|api_key|apikey|token|key)=)[^&\s"]+`)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ProxyHandler forwards /proxy/{service}/... requests to registered services.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
	now     func() time.Time
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
		now:     time.Now,
	}
}

// Handle proxies the request to the service named by the first path segment
// and writes back either the normalized upstream response or one JSON error.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	var body []byte
	if service.ForwardsBody(req.Method) && req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			// BodyLimit reports oversize bodies as an HTTP error.
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return he
			}
			return h.mapError(c, err)
		}
		body = b
	}

	pr := &model.ProxyRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Segments: pathSegments(c),
		RawQuery: req.URL.RawQuery,
		Header:   req.Header,
		Body:     body,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}

	for key, vals := range resp.Header {
		c.Response().Header()[key] = vals
	}

	return c.Blob(resp.StatusCode, resp.Header.Get(echo.HeaderContentType), resp.Payload.Bytes())
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	var re *service.ResolveError
	if errors.As(err, &re) {
		h.logger.Debug("unresolved service",
			"service", re.Service,
			"path", c.Request().URL.Path,
		)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": re.Error(),
		})
	}

	msg := sanitizeError(err)
	h.logger.Error("proxy error",
		"err", msg,
		"path", c.Request().URL.Path,
	)

	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error":     "Proxy request failed",
		"message":   msg,
		"timestamp": h.now().UTC().Format(timestampLayout),
	})
}

// pathSegments returns the escaped request path below the matched route prefix,
// split on '/'. It returns nil when nothing follows the prefix.
func pathSegments(c echo.Context) []string {
	prefix := strings.TrimSuffix(strings.TrimSuffix(c.Path(), "*"), "/")
	rest := strings.TrimPrefix(c.Request().URL.EscapedPath(), prefix)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// sanitizeError redacts credentials from error messages that may contain upstream URLs.
func sanitizeError(err error) string {
	return secretParamPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]")
}
