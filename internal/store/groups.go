package store

import (
	"context"
	"fmt"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
)

// SaveGroups bulk-upserts the group summaries produced by a parse,
// keyed by (playlist_id, group_hash). Small, bounded cardinality (spec
// §4.1: "dozens to low hundreds of groups"), so a loop of upserts is
// used rather than bulk-copy.
func (s *Store) SaveGroups(ctx context.Context, playlistID int64, groups []m3u.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save groups begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_groups (playlist_id, group_hash, name, media_kind, item_count, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (playlist_id, group_hash) DO UPDATE SET
			name = EXCLUDED.name, media_kind = EXCLUDED.media_kind,
			item_count = EXCLUDED.item_count, logo_url = EXCLUDED.logo_url`)
	if err != nil {
		return fmt.Errorf("store: prepare group upsert: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		if _, err := stmt.ExecContext(ctx, playlistID, g.Hash,
			copySafe(g.Name, nameLimit), g.MediaKind.String(), g.ItemCount, g.LogoURL); err != nil {
			return fmt.Errorf("store: upsert group %q: %w", g.Name, err)
		}
	}

	return tx.Commit()
}

// GroupRow is a persisted group summary.
type GroupRow struct {
	Hash      string
	Name      string
	MediaKind string
	ItemCount int
	LogoURL   string
}

// ListGroups returns every group for playlistID, optionally filtered to
// a single media kind.
func (s *Store) ListGroups(ctx context.Context, playlistID int64, mediaKind string) ([]GroupRow, error) {
	query := `SELECT group_hash, name, media_kind, item_count, COALESCE(logo_url,'')
		FROM playlist_groups WHERE playlist_id = $1`
	args := []interface{}{playlistID}
	if mediaKind != "" {
		query += " AND media_kind = $2"
		args = append(args, mediaKind)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list groups: %w", err)
	}
	defer rows.Close()

	var out []GroupRow
	for rows.Next() {
		var g GroupRow
		if err := rows.Scan(&g.Hash, &g.Name, &g.MediaKind, &g.ItemCount, &g.LogoURL); err != nil {
			return nil, fmt.Errorf("store: scan group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
