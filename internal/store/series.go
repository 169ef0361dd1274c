package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
)

// SaveSeries persists the series header rows and, in a second phase
// scoped to its own transaction per series (spec §4.5: "episodes load
// in a second phase, after the series row exists"), their episodes via
// bulk-copy.
func (s *Store) SaveSeries(ctx context.Context, playlistID int64, series []m3u.Series) error {
	for _, sr := range series {
		seriesID, err := s.upsertSeriesHeader(ctx, playlistID, sr)
		if err != nil {
			return err
		}
		if err := s.bulkLoadEpisodes(ctx, seriesID, sr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertSeriesHeader(ctx context.Context, playlistID int64, sr m3u.Series) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO series (playlist_id, series_hash, name, group_name, logo_url, year, quality,
			total_episodes, total_seasons, first_season, last_season)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (playlist_id, series_hash) DO UPDATE SET
			name = EXCLUDED.name, group_name = EXCLUDED.group_name, logo_url = EXCLUDED.logo_url,
			year = EXCLUDED.year, quality = EXCLUDED.quality, total_episodes = EXCLUDED.total_episodes,
			total_seasons = EXCLUDED.total_seasons, first_season = EXCLUDED.first_season,
			last_season = EXCLUDED.last_season
		RETURNING id`,
		playlistID, sr.Hash, copySafe(sr.Name, nameLimit), copySafe(sr.Group, groupLimit), sr.LogoURL,
		sr.Year, sr.Quality, sr.TotalEpisodes, sr.TotalSeasons, sr.FirstSeason, sr.LastSeason,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: upsert series %q: %w", sr.Name, err)
	}
	return id, nil
}

func (s *Store) bulkLoadEpisodes(ctx context.Context, seriesID int64, sr m3u.Series) error {
	var episodes []m3u.SeriesEpisode
	for _, season := range sr.SeasonsData {
		episodes = append(episodes, season.Episodes...)
	}
	if len(episodes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin episodes tx: %w", err)
	}
	defer tx.Rollback()

	// Episodes are replaced wholesale on each reload: a series' episode
	// list can shrink (removed from the upstream playlist) and the
	// bulk-copy path has no UPSERT semantics of its own.
	if _, err := tx.ExecContext(ctx, `DELETE FROM series_episodes WHERE series_id = $1`, seriesID); err != nil {
		return fmt.Errorf("store: clear episodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("series_episodes",
		"series_id", "item_hash", "name", "season", "episode", "url"))
	if err != nil {
		return fmt.Errorf("store: prepare episodes copy-in: %w", err)
	}

	for _, ep := range episodes {
		if _, err := stmt.ExecContext(ctx, seriesID, copySafe(ep.ItemHash, hashLimit),
			copySafe(ep.Name, nameLimit), ep.Season, ep.Episode, copySafe(ep.URL, urlLimit)); err != nil {
			stmt.Close()
			return fmt.Errorf("store: copy-in episode row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("store: copy-in episodes flush: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("store: copy-in episodes close: %w", err)
	}

	return tx.Commit()
}

// SeriesRow is a persisted series header.
type SeriesRow struct {
	Hash          string
	Name          string
	Group         string
	LogoURL       string
	Year          *int
	Quality       string
	TotalEpisodes int
	TotalSeasons  int
	FirstSeason   *int
	LastSeason    *int
}

// SeriesDetail is a series header with its episodes grouped into
// ordered seasons, as returned by the episode-listing endpoint.
type SeriesDetail struct {
	SeriesRow
	Seasons []m3u.SeasonData
}

// ListSeries returns every series summary for playlistID.
func (s *Store) ListSeries(ctx context.Context, playlistID int64) ([]SeriesRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_hash, name, COALESCE(group_name,''), COALESCE(logo_url,''), year,
			COALESCE(quality,''), total_episodes, total_seasons, first_season, last_season
		FROM series WHERE playlist_id = $1 ORDER BY name`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("store: list series: %w", err)
	}
	defer rows.Close()

	var out []SeriesRow
	for rows.Next() {
		var r SeriesRow
		if err := rows.Scan(&r.Hash, &r.Name, &r.Group, &r.LogoURL, &r.Year, &r.Quality,
			&r.TotalEpisodes, &r.TotalSeasons, &r.FirstSeason, &r.LastSeason); err != nil {
			return nil, fmt.Errorf("store: scan series: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetSeriesDetail fetches a single series and its episodes, grouped into
// seasons ordered by season number with episodes ordered within.
func (s *Store) GetSeriesDetail(ctx context.Context, playlistID int64, seriesHash string) (*SeriesDetail, error) {
	var d SeriesDetail
	var seriesID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, series_hash, name, COALESCE(group_name,''), COALESCE(logo_url,''), year,
			COALESCE(quality,''), total_episodes, total_seasons, first_season, last_season
		FROM series WHERE playlist_id = $1 AND series_hash = $2`, playlistID, seriesHash,
	).Scan(&seriesID, &d.Hash, &d.Name, &d.Group, &d.LogoURL, &d.Year, &d.Quality,
		&d.TotalEpisodes, &d.TotalSeasons, &d.FirstSeason, &d.LastSeason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get series: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_hash, name, season, episode, url FROM series_episodes
		WHERE series_id = $1 ORDER BY season, episode`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("store: list episodes: %w", err)
	}
	defer rows.Close()

	bySeason := map[int][]m3u.SeriesEpisode{}
	var seasonNums []int
	for rows.Next() {
		var ep m3u.SeriesEpisode
		if err := rows.Scan(&ep.ItemHash, &ep.Name, &ep.Season, &ep.Episode, &ep.URL); err != nil {
			return nil, fmt.Errorf("store: scan episode: %w", err)
		}
		if _, ok := bySeason[ep.Season]; !ok {
			seasonNums = append(seasonNums, ep.Season)
		}
		bySeason[ep.Season] = append(bySeason[ep.Season], ep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Ints(seasonNums)
	for _, n := range seasonNums {
		d.Seasons = append(d.Seasons, m3u.SeasonData{SeasonNumber: n, Episodes: bySeason[n]})
	}
	return &d, nil
}
