// Package coordination is the coordination store gateway (component C6):
// typed operations over sessions, processing locks, progress snapshots,
// and a legacy cache-metadata mirror, all backed by a TTL key-value
// store.
//
// Grounded on server/internal/ratelimit's Store-interface-plus-go-redis-
// adapter split: a narrow Store interface here is satisfied by a
// RedisStore wrapping *redis.Client, generalized from rate-limit
// counters to session/lock/progress documents.
package coordination

import (
	"context"
	"time"
)

// Store is the minimal key-value interface this gateway needs. Kept
// narrow (not the full go-redis API) so it can be faked in tests,
// mirroring ratelimit.Store.
type Store interface {
	// Get returns the value at key, or ("", ErrNotFound) if absent.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value at key with the given TTL (0 means no expiry).
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX writes value at key only if it does not already exist,
	// returning whether the write happened.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Del removes one or more keys.
	Del(ctx context.Context, keys ...string) error
}

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "coordination: key not found" }

// Default TTLs, per spec §4.6.
const (
	DefaultSessionTTL    = 900 * time.Second
	DefaultProcessingTTL = 600 * time.Second
	DefaultProgressTTL   = 3600 * time.Second
)

// Gateway wraps a Store with the typed operations this spec needs.
// activeHash binds a Gateway to one playlist hash so it can satisfy
// m3u.ProgressReporter's narrow (hash-less) ReportProgress signature;
// see ForHash.
type Gateway struct {
	store      Store
	activeHash string
}

// New returns a Gateway backed by store.
func New(store Store) *Gateway {
	return &Gateway{store: store}
}

func secondsToDuration(secs int64) time.Duration {
	if secs <= 0 {
		return DefaultProgressTTL
	}
	return time.Duration(secs) * time.Second
}
