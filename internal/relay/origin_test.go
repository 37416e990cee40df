package relay

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestWithOrigin(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestOriginAllowed(t *testing.T) {
	p := NewOriginPolicy([]string{"http://localhost:3000"}, discardLogger())

	assert.True(t, p.Check(requestWithOrigin("http://localhost:3000")))
	// Scheme and host compare case-insensitively.
	assert.True(t, p.Check(requestWithOrigin("HTTP://LOCALHOST:3000")))
}

func TestOriginDisallowed(t *testing.T) {
	p := NewOriginPolicy([]string{"http://localhost:3000"}, discardLogger())

	assert.False(t, p.Check(requestWithOrigin("http://evil.example.com")))
	assert.False(t, p.Check(requestWithOrigin("http://localhost:4000")))
	assert.False(t, p.Check(requestWithOrigin("")))
}

func TestOriginWildcard(t *testing.T) {
	p := NewOriginPolicy([]string{"*"}, discardLogger())

	assert.True(t, p.Check(requestWithOrigin("http://anything.example.com")))
	// A missing header is still rejected even under the wildcard.
	assert.False(t, p.Check(requestWithOrigin("")))
}

func TestOriginInvalidConfigEntrySkipped(t *testing.T) {
	p := NewOriginPolicy([]string{"not a url", "http://ok.example.com"}, discardLogger())

	assert.True(t, p.Check(requestWithOrigin("http://ok.example.com")))
	assert.False(t, p.Check(requestWithOrigin("http://not-a-url")))
}
