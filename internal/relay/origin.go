// Package relay normalizes and validates HTTP origins for WebSocket upgrade
// requests to enforce the configured access control.
package relay

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which Origin headers may upgrade to a WebSocket.
// Origins compare by normalized scheme://host; a configured "*" allows all.
type OriginPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
	log      *slog.Logger
}

// NewOriginPolicy builds a policy from configured origins. Entries that do
// not parse as absolute URLs are skipped with a log line rather than
// silently widening or narrowing the policy.
func NewOriginPolicy(origins []string, log *slog.Logger) *OriginPolicy {
	p := &OriginPolicy{
		allowed: make(map[string]struct{}, len(origins)),
		log:     log,
	}

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			p.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Warn("ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		p.allowed[normalized] = struct{}{}
	}

	return p
}

// Check reports whether the request's Origin header is allowed. It has the
// signature gorilla's Upgrader.CheckOrigin expects.
func (p *OriginPolicy) Check(r *http.Request) bool {
	if p.isAllowed(r) {
		return true
	}
	p.log.Warn("blocked websocket upgrade from disallowed origin", "origin", r.Header.Get("Origin"))
	return false
}

func (p *OriginPolicy) isAllowed(r *http.Request) bool {
	originHeader := r.Header.Get("Origin")
	if originHeader == "" {
		return false
	}

	normalized, ok := normalizeOrigin(originHeader)
	if !ok {
		return false
	}

	if p.allowAll {
		return true
	}
	_, exists := p.allowed[normalized]
	return exists
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
