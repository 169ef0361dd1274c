package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
)

// batchSize is the bulk-copy flush threshold (spec §4.5's "default
// 500 items").
const batchSize = 500

// BulkItemWriter implements m3u.ItemWriter: it batches items in memory
// and flushes each batch via the bulk-copy text protocol
// (pq.CopyIn), all within one open transaction scoped to a single
// playlist. Finish commits; a writer abandoned without Finish never
// commits, and Abort rolls its transaction back, discarding everything
// written — this is ingestion's atomicity guarantee.
type BulkItemWriter struct {
	playlistID int64
	tx         *sql.Tx
	batch      []m3u.Item
	written    int
}

// NewBulkItemWriter opens a transaction and returns a writer scoped to
// playlistID.
func NewBulkItemWriter(ctx context.Context, db *sql.DB, playlistID int64) (*BulkItemWriter, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin items tx: %w", err)
	}
	return &BulkItemWriter{playlistID: playlistID, tx: tx}, nil
}

func (w *BulkItemWriter) WriteItem(ctx context.Context, item m3u.Item) error {
	w.batch = append(w.batch, item)
	if len(w.batch) >= batchSize {
		return w.flush(ctx)
	}
	return nil
}

func (w *BulkItemWriter) flush(ctx context.Context) error {
	if len(w.batch) == 0 {
		return nil
	}

	stmt, err := w.tx.PrepareContext(ctx, pq.CopyIn("playlist_items",
		"playlist_id", "item_hash", "name", "url", "logo_url", "group_name",
		"media_kind", "year", "season", "episode", "quality", "language",
		"is_dubbed", "is_subbed", "series_hash", "sort_order"))
	if err != nil {
		return fmt.Errorf("store: prepare copy-in: %w", err)
	}

	for _, item := range w.batch {
		var year, quality, language interface{}
		if item.ParsedTitle != nil {
			if item.ParsedTitle.Year != nil {
				year = *item.ParsedTitle.Year
			}
			quality = copySafe(item.ParsedTitle.Quality, qualityLimit)
			language = item.ParsedTitle.Language
		}
		var season, episode interface{}
		if item.Season != nil {
			season = *item.Season
		}
		if item.Episode != nil {
			episode = *item.Episode
		}
		isDubbed, isSubbed := false, false
		if item.ParsedTitle != nil {
			isDubbed, isSubbed = item.ParsedTitle.IsDubbed, item.ParsedTitle.IsSubbed
		}

		_, err := stmt.ExecContext(ctx,
			w.playlistID,
			copySafe(item.Hash, hashLimit),
			copySafe(item.Name, nameLimit),
			copySafe(item.URL, urlLimit),
			item.LogoURL,
			copySafe(item.GroupName, groupLimit),
			item.MediaKind.String(),
			year, season, episode,
			quality, language,
			isDubbed, isSubbed,
			item.SeriesHash,
			item.SortOrder,
		)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("store: copy-in row: %w", err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("store: copy-in flush: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("store: copy-in close: %w", err)
	}

	w.written += len(w.batch)
	w.batch = w.batch[:0]
	return nil
}

// Finish flushes any remaining buffered rows and commits the
// transaction, returning the total number of items written.
func (w *BulkItemWriter) Finish(ctx context.Context) (int, error) {
	if err := w.flush(ctx); err != nil {
		w.tx.Rollback()
		return 0, err
	}
	if err := w.tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit items tx: %w", err)
	}
	return w.written, nil
}

// Abort rolls back the writer's transaction without committing. Callers
// use this on a parse failure, per spec §4.3's failure semantics.
func (w *BulkItemWriter) Abort() error {
	return w.tx.Rollback()
}

// ItemRow is a persisted playlist item as read back from the store.
type ItemRow struct {
	Hash       string
	Name       string
	URL        string
	LogoURL    string
	GroupName  string
	MediaKind  string
	Year       *int
	Season     *int
	Episode    *int
	Quality    string
	Language   string
	IsDubbed   bool
	IsSubbed   bool
	SeriesHash string
	SortOrder  int
}

// ListItemsFilter narrows a paginated item listing.
type ListItemsFilter struct {
	Group     string
	MediaKind string
	Limit     int
	Offset    int
}

// ListItems returns a page of items for playlistID matching filter,
// plus the total matching row count (for hasMore computation).
func (s *Store) ListItems(ctx context.Context, playlistID int64, f ListItemsFilter) ([]ItemRow, int, error) {
	where := "playlist_id = $1"
	args := []interface{}{playlistID}
	argIdx := 2

	if f.Group != "" {
		where += fmt.Sprintf(" AND group_name = $%d", argIdx)
		args = append(args, f.Group)
		argIdx++
	}
	if f.MediaKind != "" {
		where += fmt.Sprintf(" AND media_kind = $%d", argIdx)
		args = append(args, f.MediaKind)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM playlist_items WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count items: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT item_hash, name, url, COALESCE(logo_url,''), COALESCE(group_name,''),
		media_kind, year, season, episode, COALESCE(quality,''), COALESCE(language,''),
		is_dubbed, is_subbed, COALESCE(series_hash,''), sort_order
		FROM playlist_items WHERE %s ORDER BY sort_order LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	var items []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.Hash, &it.Name, &it.URL, &it.LogoURL, &it.GroupName,
			&it.MediaKind, &it.Year, &it.Season, &it.Episode, &it.Quality, &it.Language,
			&it.IsDubbed, &it.IsSubbed, &it.SeriesHash, &it.SortOrder); err != nil {
			return nil, 0, fmt.Errorf("store: scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// SearchItems performs a trigram-similarity fuzzy search scoped to
// playlistID, ranked by similarity(name, q) descending (spec §4.5).
func (s *Store) SearchItems(ctx context.Context, playlistID int64, q string, limit int) ([]ItemRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_hash, name, url, COALESCE(logo_url,''), COALESCE(group_name,''),
			media_kind, year, season, episode, COALESCE(quality,''), COALESCE(language,''),
			is_dubbed, is_subbed, COALESCE(series_hash,''), sort_order
		FROM playlist_items
		WHERE playlist_id = $1 AND (name % $2 OR name ILIKE '%' || $2 || '%')
		ORDER BY similarity(name, $2) DESC
		LIMIT $3`, playlistID, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search items: %w", err)
	}
	defer rows.Close()

	var items []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.Hash, &it.Name, &it.URL, &it.LogoURL, &it.GroupName,
			&it.MediaKind, &it.Year, &it.Season, &it.Episode, &it.Quality, &it.Language,
			&it.IsDubbed, &it.IsSubbed, &it.SeriesHash, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("store: scan search item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
