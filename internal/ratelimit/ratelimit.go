// Package ratelimit provides Redis-backed rate limiting for the parse
// admission and HLS proxy endpoints. When Redis is unavailable (nil
// store), all rate limits are disabled — requests pass. This lets the
// service degrade gracefully in dev/test environments without Redis.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Store is the minimal interface required for rate limiting. It is
// implemented by RedisStore over go-redis.
type Store interface {
	// Incr atomically increments a counter key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire sets the TTL on a key (only if TTL not already set by the incr).
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL returns the remaining time-to-live on a key. Returns 0 or negative if expired/missing.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Limiter performs rate limit checks against a Store.
type Limiter struct {
	store Store
}

// New creates a Limiter backed by the given Store. If store is nil, the
// Limiter is a no-op that always allows requests.
func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// RateLimitConfig holds the per-endpoint rate limit settings applied by
// the HTTP layer.
type RateLimitConfig struct {
	// Parse admission: POST /api/playlist/parse.
	ParseRate   int
	ParseWindow time.Duration

	// HLS proxy passthrough: GET /api/proxy/hls.
	ProxyRate   int
	ProxyWindow time.Duration
}

// DefaultRateLimits returns the production rate limit configuration.
//
//	Parse admission: 10 requests per minute
//	HLS proxy:        300 requests per minute
func DefaultRateLimits() RateLimitConfig {
	return RateLimitConfig{
		ParseRate:   10,
		ParseWindow: time.Minute,
		ProxyRate:   300,
		ProxyWindow: time.Minute,
	}
}

// CheckParse enforces the parse-admission rate limit for the given key
// (device ID). Returns (allowed, retryAfterSecs).
func (l *Limiter) CheckParse(ctx context.Context, key string, cfg RateLimitConfig) (bool, int) {
	return l.check(ctx, fmt.Sprintf("rl:parse:%s", key), cfg.ParseRate, cfg.ParseWindow)
}

// CheckProxy enforces the HLS proxy rate limit for the given key
// (client ID, falling back to remote IP for unscoped requests).
func (l *Limiter) CheckProxy(ctx context.Context, key string, cfg RateLimitConfig) (bool, int) {
	return l.check(ctx, fmt.Sprintf("rl:proxy:%s", key), cfg.ProxyRate, cfg.ProxyWindow)
}

// ClientIP extracts the real client IP from a request, handling reverse
// proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}

// check is the generic increment-and-check against a Redis key. Returns
// (allowed, retryAfterSecs). If store is nil, always returns (true, 0).
func (l *Limiter) check(ctx context.Context, key string, max int, window time.Duration) (bool, int) {
	if l.store == nil {
		return true, 0
	}

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		// Redis error — fail open (allow request, don't block on infra issues).
		return true, 0
	}

	if count == 1 {
		l.store.Expire(ctx, key, window)
	}

	if count > int64(max) {
		ttl, _ := l.store.TTL(ctx, key)
		retry := int(ttl.Seconds())
		if retry < 1 {
			retry = int(window.Seconds())
		}
		return false, retry
	}

	return true, 0
}
