package coordination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Session is the ephemeral hand-off document keyed by a 12-hex session
// id (spec's Glossary: "Session (ephemeral)").
type Session struct {
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func sessionKey(sessionID string) string { return fmt.Sprintf("session:%s", sessionID) }

// CreateSession writes the empty session shell with the given TTL
// (DefaultSessionTTL when ttl <= 0).
func (g *Gateway) CreateSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := Session{CreatedAt: time.Now()}
	buf, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("coordination: marshal session: %w", err)
	}
	return g.store.Set(ctx, sessionKey(sessionID), string(buf), ttl)
}

// PollSession reads the session. If a URL has been delivered, the key
// is deleted (one-shot hand-off) and the session is returned with
// found=true. A missing key returns found=false, no error.
func (g *Gateway) PollSession(ctx context.Context, sessionID string) (s Session, found bool, err error) {
	raw, err := g.store.Get(ctx, sessionKey(sessionID))
	if err == ErrNotFound {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("coordination: get session: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, false, fmt.Errorf("coordination: unmarshal session: %w", err)
	}
	if s.URL != "" {
		g.store.Del(ctx, sessionKey(sessionID))
	}
	return s, true, nil
}

// SendSession fetches the session, sets its URL, and rewrites it with a
// refreshed TTL. Returns false if the session does not exist.
func (g *Gateway) SendSession(ctx context.Context, sessionID, url string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	raw, err := g.store.Get(ctx, sessionKey(sessionID))
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("coordination: get session for send: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return false, fmt.Errorf("coordination: unmarshal session for send: %w", err)
	}
	s.URL = url
	buf, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("coordination: marshal session for send: %w", err)
	}
	if err := g.store.Set(ctx, sessionKey(sessionID), string(buf), ttl); err != nil {
		return false, fmt.Errorf("coordination: rewrite session: %w", err)
	}
	return true, nil
}
