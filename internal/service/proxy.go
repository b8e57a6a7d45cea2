// Package service implements the core proxy forwarding logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"service-proxy-go/internal/client"
	"service-proxy-go/internal/model"
	"service-proxy-go/internal/registry"
)

// Sentinel errors for request resolution. Both are returned wrapped in a *ResolveError.
var (
	ErrMissingService = errors.New("missing service")
	ErrUnknownService = errors.New("unknown service")
)

// ResolveError reports a request that could not be matched to a registered service.
type ResolveError struct {
	Kind      error  // ErrMissingService or ErrUnknownService
	Service   string // requested key; empty for ErrMissingService
	Available []string
}

func (e *ResolveError) Error() string {
	list := strings.Join(e.Available, ", ")
	if errors.Is(e.Kind, ErrMissingService) {
		return "Service name is required. Available services: " + list
	}
	return fmt.Sprintf("Unknown service: %s. Available services: %s", e.Service, list)
}

func (e *ResolveError) Unwrap() error { return e.Kind }

// forwardableRequestHeaders are the only inbound headers copied upstream.
// They override the service defaults when present.
var forwardableRequestHeaders = []string{
	"Authorization",
	"Content-Type",
	"User-Agent",
}

// forwardableResponseHeaders are the only upstream headers copied to the client
// besides Content-Type.
var forwardableResponseHeaders = []string{
	"Cache-Control",
	"Etag",
	"Last-Modified",
}

// bodyMethods are the methods whose inbound body is forwarded.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

const defaultContentType = "application/json"

// Doer issues one outbound request and returns the buffered response.
type Doer interface {
	Do(ctx context.Context, service, method, url string, header http.Header, body []byte) (*client.Response, error)
}

// ProxyService handles the forwarding logic for proxy requests.
type ProxyService struct {
	client   Doer
	registry *registry.Registry
	logger   *slog.Logger
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.UpstreamClient, reg *registry.Registry, logger *slog.Logger) *ProxyService {
	return newProxyService(c, reg, logger)
}

func newProxyService(c Doer, reg *registry.Registry, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client:   c,
		registry: reg,
		logger:   logger.With("component", "proxy_service"),
	}
}

// Services returns the registered service keys.
func (s *ProxyService) Services() []string {
	return s.registry.Keys()
}

// Forward resolves pr against the registry, sends it upstream and normalizes the response.
//
// Resolution failures are returned as *ResolveError before any network activity.
// Every other error comes from building, sending, or reading the upstream call.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	entry, path, err := s.resolve(pr.Segments)
	if err != nil {
		return nil, err
	}

	target := BuildTargetURL(entry.BaseURL, path, pr.RawQuery)
	header := buildRequestHeaders(entry, pr.Header)

	var body []byte
	if bodyMethods[pr.Method] && len(pr.Body) > 0 {
		body = pr.Body
	}

	s.logger.Debug("forwarding request",
		"service", entry.Key,
		"method", pr.Method,
		"path", path,
	)

	ctx := pr.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := s.client.Do(ctx, entry.Key, pr.Method, target, header, body)
	if err != nil {
		return nil, fmt.Errorf("forward to %s: %w", entry.Key, err)
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     buildResponseHeaders(resp.Header),
		Payload:    model.ParsePayload(resp.Body),
	}, nil
}

// resolve splits segments into the service entry and the downstream path.
func (s *ProxyService) resolve(segments []string) (registry.ServiceEntry, string, error) {
	if len(segments) == 0 || segments[0] == "" {
		return registry.ServiceEntry{}, "", &ResolveError{
			Kind:      ErrMissingService,
			Available: s.registry.Keys(),
		}
	}

	key := segments[0]
	entry, ok := s.registry.Lookup(key)
	if !ok {
		return registry.ServiceEntry{}, "", &ResolveError{
			Kind:      ErrUnknownService,
			Service:   key,
			Available: s.registry.Keys(),
		}
	}

	return entry, strings.Join(segments[1:], "/"), nil
}

// BuildTargetURL joins base and path with a single '/' and appends rawQuery verbatim.
// Neither part is re-encoded or normalized.
func BuildTargetURL(base, path, rawQuery string) string {
	target := base + "/" + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

func buildRequestHeaders(entry registry.ServiceEntry, src http.Header) http.Header {
	dst := entry.Headers()
	for _, key := range forwardableRequestHeaders {
		if v := src.Get(key); v != "" {
			dst.Set(key, v)
		}
	}
	return dst
}

func buildResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	if ct := src.Get("Content-Type"); ct != "" {
		dst.Set("Content-Type", ct)
	} else {
		dst.Set("Content-Type", defaultContentType)
	}
	for _, key := range forwardableResponseHeaders {
		if v := src.Get(key); v != "" {
			dst.Set(key, v)
		}
	}
	return dst
}

// ForwardsBody reports whether the inbound body is sent upstream for method.
func ForwardsBody(method string) bool {
	return bodyMethods[method]
}
