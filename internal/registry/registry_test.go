package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Default(t *testing.T) {
	r, err := New(Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"github", "coingecko"}, r.Keys())

	gh, ok := r.Lookup("github")
	require.True(t, ok)
	assert.Equal(t, "https://api.github.com", gh.BaseURL)
	assert.Equal(t, "application/vnd.github.v3+json", gh.DefaultHeaders["Accept"])
	assert.Equal(t, "application/json", gh.DefaultHeaders["Content-Type"])

	cg, ok := r.Lookup("coingecko")
	require.True(t, ok)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cg.BaseURL)
	assert.Len(t, cg.DefaultHeaders, 1)
}

func TestLookup_Missing(t *testing.T) {
	r, err := New(Default())
	require.NoError(t, err)

	_, ok := r.Lookup("not-a-real-service")
	assert.False(t, ok)

	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestNew_TrimsTrailingSlashAndCanonicalizesHeaders(t *testing.T) {
	r, err := New([]ServiceEntry{{
		Key:            "svc",
		BaseURL:        "https://example.com/api/",
		DefaultHeaders: map[string]string{"x-api-version": "2"},
	}})
	require.NoError(t, err)

	e, ok := r.Lookup("svc")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/api", e.BaseURL)
	assert.Equal(t, "2", e.DefaultHeaders["X-Api-Version"])
	assert.Equal(t, "2", e.Headers().Get("x-api-version"))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []ServiceEntry
		wantErr string
	}{
		{"empty key", []ServiceEntry{{Key: "", BaseURL: "https://a.example"}}, "empty service key"},
		{"slash in key", []ServiceEntry{{Key: "a/b", BaseURL: "https://a.example"}}, "must not contain"},
		{"duplicate", []ServiceEntry{
			{Key: "a", BaseURL: "https://a.example"},
			{Key: "a", BaseURL: "https://b.example"},
		}, "duplicate"},
		{"relative url", []ServiceEntry{{Key: "a", BaseURL: "/api"}}, "not absolute"},
		{"no host", []ServiceEntry{{Key: "a", BaseURL: "https://"}}, "not absolute"},
		{"unparseable", []ServiceEntry{{Key: "a", BaseURL: "https://bad host\x7f"}}, "invalid base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKeys_ReturnsCopy(t *testing.T) {
	r, err := New(Default())
	require.NoError(t, err)

	keys := r.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "github", r.Keys()[0])
}

func TestHeaders_Independent(t *testing.T) {
	r, err := New(Default())
	require.NoError(t, err)

	gh, _ := r.Lookup("github")
	h := gh.Headers()
	h.Set("Authorization", "Bearer x")

	assert.Empty(t, gh.Headers().Get("Authorization"))
}
