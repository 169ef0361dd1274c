package coordination

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
)

func cacheMetaKey(hash string) string { return fmt.Sprintf("cache_meta:%s", hash) }

// SetCacheMeta writes a best-effort mirror of a playlist's aggregate
// stats. Legacy path — the persistent store remains the primary source
// (spec §4.6), so callers must not treat a miss here as "playlist does
// not exist".
func (g *Gateway) SetCacheMeta(ctx context.Context, hash string, stats m3u.Stats, ttl int64) error {
	buf, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("coordination: marshal cache meta: %w", err)
	}
	return g.store.Set(ctx, cacheMetaKey(hash), string(buf), secondsToDuration(ttl))
}

// GetCacheMeta reads the mirrored stats, if present.
func (g *Gateway) GetCacheMeta(ctx context.Context, hash string) (m3u.Stats, bool, error) {
	raw, err := g.store.Get(ctx, cacheMetaKey(hash))
	if err == ErrNotFound {
		return m3u.Stats{}, false, nil
	}
	if err != nil {
		return m3u.Stats{}, false, fmt.Errorf("coordination: get cache meta: %w", err)
	}
	var stats m3u.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return m3u.Stats{}, false, fmt.Errorf("coordination: unmarshal cache meta: %w", err)
	}
	return stats, true, nil
}
