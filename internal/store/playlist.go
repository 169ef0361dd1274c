package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
)

// Playlist is a persisted playlist header row.
type Playlist struct {
	ID             int64
	Hash           string
	ClientID       string
	DeviceID       string
	URL            string
	SourceType     string
	TotalItems     int
	LiveCount      int
	MovieCount     int
	SeriesCount    int
	UnknownCount   int
	GroupCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      *time.Time
}

// UpsertPlaylist creates or updates the playlist header row keyed by
// (client_id, hash), refreshing denormalized counts from stats. This is
// the admission-time write for a generic M3U playlist (spec §4.5/§4.7).
func (s *Store) UpsertPlaylist(ctx context.Context, clientID, hash, url string, stats m3u.Stats) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (hash, client_id, url, source_type, total_items,
			live_count, movie_count, series_count, unknown_count, group_count, updated_at)
		VALUES ($1, $2, $3, 'generic-m3u', $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (client_id, hash) DO UPDATE SET
			total_items = EXCLUDED.total_items,
			live_count = EXCLUDED.live_count,
			movie_count = EXCLUDED.movie_count,
			series_count = EXCLUDED.series_count,
			unknown_count = EXCLUDED.unknown_count,
			group_count = EXCLUDED.group_count,
			updated_at = now()
		RETURNING id, hash, COALESCE(client_id,''), COALESCE(device_id,''), url, source_type,
			total_items, live_count, movie_count, series_count, unknown_count, group_count,
			created_at, updated_at, expires_at`,
		hash, clientID, url, stats.Total, stats.Live, stats.Movie, stats.Series, stats.Unknown, stats.Groups,
	).Scan(&p.ID, &p.Hash, &p.ClientID, &p.DeviceID, &p.URL, &p.SourceType,
		&p.TotalItems, &p.LiveCount, &p.MovieCount, &p.SeriesCount, &p.UnknownCount, &p.GroupCount,
		&p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("store: upsert playlist: %w", err)
	}
	return &p, nil
}

// GetPlaylistByHash looks up a playlist by its content hash, optionally
// scoped to clientID (empty means unscoped).
func (s *Store) GetPlaylistByHash(ctx context.Context, clientID, hash string) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hash, COALESCE(client_id,''), COALESCE(device_id,''), url, source_type,
			total_items, live_count, movie_count, series_count, unknown_count, group_count,
			created_at, updated_at, expires_at
		FROM playlists WHERE hash = $1 AND ($2 = '' OR client_id = $2)`,
		hash, clientID,
	).Scan(&p.ID, &p.Hash, &p.ClientID, &p.DeviceID, &p.URL, &p.SourceType,
		&p.TotalItems, &p.LiveCount, &p.MovieCount, &p.SeriesCount, &p.UnknownCount, &p.GroupCount,
		&p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get playlist: %w", err)
	}
	return &p, nil
}

// GetPlaylist fetches a playlist header by its internal id.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hash, COALESCE(client_id,''), COALESCE(device_id,''), url, source_type,
			total_items, live_count, movie_count, series_count, unknown_count, group_count,
			created_at, updated_at, expires_at
		FROM playlists WHERE id = $1`, id,
	).Scan(&p.ID, &p.Hash, &p.ClientID, &p.DeviceID, &p.URL, &p.SourceType,
		&p.TotalItems, &p.LiveCount, &p.MovieCount, &p.SeriesCount, &p.UnknownCount, &p.GroupCount,
		&p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get playlist by id: %w", err)
	}
	return &p, nil
}

// AttachDevice binds playlistID to deviceID, evicting any playlist the
// device previously held (a device owns at most one playlist at a time,
// per the E5 reassignment scenario) and refreshing the TTL to now+ttl.
func (s *Store) AttachDevice(ctx context.Context, playlistID int64, deviceID string, ttl time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: attach device begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE playlists SET device_id = NULL WHERE device_id = $1 AND id != $2`,
		deviceID, playlistID); err != nil {
		return fmt.Errorf("store: evict prior device playlist: %w", err)
	}

	expiresAt := time.Now().Add(ttl)
	if _, err := tx.ExecContext(ctx,
		`UPDATE playlists SET device_id = $1, expires_at = $2, updated_at = now() WHERE id = $3`,
		deviceID, expiresAt, playlistID); err != nil {
		return fmt.Errorf("store: attach device: %w", err)
	}

	return tx.Commit()
}

// DeleteByDevice removes any playlist currently owned by deviceID.
// Used at parse-admission time (spec §4.7: "If device_id given, delete
// any existing playlist owned by that device").
func (s *Store) DeleteByDevice(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE device_id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("store: delete by device: %w", err)
	}
	return nil
}

// RefreshExpiry sets expires_at = now + ttl on a playlist, without
// touching device ownership.
func (s *Store) RefreshExpiry(ctx context.Context, playlistID int64, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE playlists SET expires_at = $1, updated_at = now() WHERE id = $2`,
		time.Now().Add(ttl), playlistID)
	if err != nil {
		return fmt.Errorf("store: refresh expiry: %w", err)
	}
	return nil
}

// DeletePlaylist removes a playlist and (via ON DELETE CASCADE) every
// item, group, series, and episode row scoped to it.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete playlist: %w", err)
	}
	return nil
}

// DeleteExpiredPlaylists removes every playlist whose expires_at has
// passed, returning the count deleted. Used by the cleanup worker (C9).
func (s *Store) DeleteExpiredPlaylists(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE expires_at IS NOT NULL AND expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("store: delete expired playlists: %w", err)
	}
	return res.RowsAffected()
}

// UpsertXtreamPlaylist persists the playlist header for an Xtream-backed
// source: the server/username/password triple replaces a playlist URL,
// per spec §4.4/§4.7.
func (s *Store) UpsertXtreamPlaylist(ctx context.Context, clientID, hash, server, username, password string, maxConns int, trial bool, expires *time.Time, stats m3u.Stats) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (hash, client_id, url, source_type, xtream_server, xtream_username,
			xtream_password, xtream_max_conns, xtream_trial, xtream_expires, total_items,
			live_count, movie_count, series_count, unknown_count, group_count, updated_at)
		VALUES ($1, $2, $3, 'xtream', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (client_id, hash) DO UPDATE SET
			xtream_server = EXCLUDED.xtream_server,
			xtream_username = EXCLUDED.xtream_username,
			xtream_password = EXCLUDED.xtream_password,
			xtream_max_conns = EXCLUDED.xtream_max_conns,
			xtream_trial = EXCLUDED.xtream_trial,
			xtream_expires = EXCLUDED.xtream_expires,
			total_items = EXCLUDED.total_items,
			live_count = EXCLUDED.live_count,
			movie_count = EXCLUDED.movie_count,
			series_count = EXCLUDED.series_count,
			unknown_count = EXCLUDED.unknown_count,
			group_count = EXCLUDED.group_count,
			updated_at = now()
		RETURNING id, hash, COALESCE(client_id,''), COALESCE(device_id,''), url, source_type,
			total_items, live_count, movie_count, series_count, unknown_count, group_count,
			created_at, updated_at, expires_at`,
		hash, clientID, server, username, password, maxConns, trial, expires,
		stats.Total, stats.Live, stats.Movie, stats.Series, stats.Unknown, stats.Groups,
	).Scan(&p.ID, &p.Hash, &p.ClientID, &p.DeviceID, &p.URL, &p.SourceType,
		&p.TotalItems, &p.LiveCount, &p.MovieCount, &p.SeriesCount, &p.UnknownCount, &p.GroupCount,
		&p.CreatedAt, &p.UpdatedAt, &p.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("store: upsert xtream playlist: %w", err)
	}
	return &p, nil
}
