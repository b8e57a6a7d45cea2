// Package registry holds the static table of external services the proxy may forward to.
package registry

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ServiceEntry describes one external API reachable through the proxy.
type ServiceEntry struct {
	Key            string
	BaseURL        string // absolute, no trailing slash
	DefaultHeaders map[string]string
}

// Registry is an immutable lookup table of ServiceEntry values keyed by service key.
// It is safe for concurrent use.
type Registry struct {
	entries map[string]ServiceEntry
	keys    []string // registration order
}

// Default returns the built-in service table.
func Default() []ServiceEntry {
	return []ServiceEntry{
		{
			Key:     "github",
			BaseURL: "https://api.github.com",
			DefaultHeaders: map[string]string{
				"Content-Type": "application/json",
				"Accept":       "application/vnd.github.v3+json",
			},
		},
		{
			Key:     "coingecko",
			BaseURL: "https://api.coingecko.com/api/v3",
			DefaultHeaders: map[string]string{
				"Content-Type": "application/json",
			},
		},
	}
}

// New builds a Registry from entries. Keys must be unique and non-empty and
// base URLs must be absolute. Trailing slashes on base URLs are trimmed.
func New(entries []ServiceEntry) (*Registry, error) {
	r := &Registry{
		entries: make(map[string]ServiceEntry, len(entries)),
		keys:    make([]string, 0, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("registry: empty service key")
		}
		if strings.Contains(e.Key, "/") {
			return nil, fmt.Errorf("registry: service key %q must not contain '/'", e.Key)
		}
		if _, dup := r.entries[e.Key]; dup {
			return nil, fmt.Errorf("registry: duplicate service key %q", e.Key)
		}

		u, err := url.Parse(e.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("registry: service %q: invalid base URL: %w", e.Key, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("registry: service %q: base URL %q is not absolute", e.Key, e.BaseURL)
		}

		headers := make(map[string]string, len(e.DefaultHeaders))
		for k, v := range e.DefaultHeaders {
			headers[http.CanonicalHeaderKey(k)] = v
		}

		r.entries[e.Key] = ServiceEntry{
			Key:            e.Key,
			BaseURL:        strings.TrimRight(e.BaseURL, "/"),
			DefaultHeaders: headers,
		}
		r.keys = append(r.keys, e.Key)
	}

	return r, nil
}

// Lookup returns the entry registered under key. The boolean is false when
// no such service exists.
func (r *Registry) Lookup(key string) (ServiceEntry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns the registered service keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Headers returns a fresh http.Header seeded with the entry's default headers.
func (e ServiceEntry) Headers() http.Header {
	h := make(http.Header, len(e.DefaultHeaders))
	for k, v := range e.DefaultHeaders {
		h.Set(k, v)
	}
	return h
}
