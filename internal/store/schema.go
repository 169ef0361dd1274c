package store

import "context"

// schemaDDL creates every table this gateway operates over. Foreign keys
// cascade from playlists downward, per spec §6's ownership model.
const schemaDDL = `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS playlists (
	id              BIGSERIAL PRIMARY KEY,
	hash            VARCHAR(255) NOT NULL,
	client_id       VARCHAR(255),
	device_id       VARCHAR(255),
	url             TEXT NOT NULL,
	source_type     VARCHAR(32) NOT NULL DEFAULT 'generic-m3u',
	xtream_server   TEXT,
	xtream_username TEXT,
	xtream_password TEXT,
	xtream_expires  TIMESTAMPTZ,
	xtream_max_conns INT,
	xtream_trial    BOOLEAN,
	total_items     INT NOT NULL DEFAULT 0,
	live_count      INT NOT NULL DEFAULT 0,
	movie_count     INT NOT NULL DEFAULT 0,
	series_count    INT NOT NULL DEFAULT 0,
	unknown_count   INT NOT NULL DEFAULT 0,
	group_count     INT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at      TIMESTAMPTZ,
	UNIQUE (client_id, hash)
);
CREATE INDEX IF NOT EXISTS idx_playlists_hash ON playlists (hash);
CREATE INDEX IF NOT EXISTS idx_playlists_device ON playlists (device_id);
CREATE INDEX IF NOT EXISTS idx_playlists_expires ON playlists (expires_at);

CREATE TABLE IF NOT EXISTS playlist_groups (
	id          BIGSERIAL PRIMARY KEY,
	playlist_id BIGINT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	group_hash  VARCHAR(255) NOT NULL,
	name        VARCHAR(1024) NOT NULL,
	media_kind  VARCHAR(16) NOT NULL,
	item_count  INT NOT NULL DEFAULT 0,
	logo_url    TEXT,
	UNIQUE (playlist_id, group_hash)
);

CREATE TABLE IF NOT EXISTS playlist_items (
	id          BIGSERIAL PRIMARY KEY,
	playlist_id BIGINT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	item_hash   VARCHAR(255) NOT NULL,
	name        VARCHAR(1024) NOT NULL,
	url         VARCHAR(2048) NOT NULL,
	logo_url    TEXT,
	group_name  VARCHAR(512),
	media_kind  VARCHAR(16) NOT NULL,
	year        INT,
	season      INT,
	episode     INT,
	quality     VARCHAR(50),
	language    VARCHAR(50),
	is_dubbed   BOOLEAN NOT NULL DEFAULT false,
	is_subbed   BOOLEAN NOT NULL DEFAULT false,
	series_hash VARCHAR(255),
	sort_order  INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_items_playlist ON playlist_items (playlist_id);
CREATE INDEX IF NOT EXISTS idx_items_playlist_group ON playlist_items (playlist_id, group_name);
CREATE INDEX IF NOT EXISTS idx_items_playlist_kind ON playlist_items (playlist_id, media_kind);
CREATE INDEX IF NOT EXISTS idx_items_name_trgm ON playlist_items USING gin (name gin_trgm_ops);

CREATE TABLE IF NOT EXISTS series (
	id            BIGSERIAL PRIMARY KEY,
	playlist_id   BIGINT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	series_hash   VARCHAR(255) NOT NULL,
	name          VARCHAR(1024) NOT NULL,
	group_name    VARCHAR(512),
	logo_url      TEXT,
	year          INT,
	quality       VARCHAR(50),
	total_episodes INT NOT NULL DEFAULT 0,
	total_seasons  INT NOT NULL DEFAULT 0,
	first_season   INT,
	last_season    INT,
	UNIQUE (playlist_id, series_hash)
);

CREATE TABLE IF NOT EXISTS series_episodes (
	id         BIGSERIAL PRIMARY KEY,
	series_id  BIGINT NOT NULL REFERENCES series(id) ON DELETE CASCADE,
	item_hash  VARCHAR(255) NOT NULL,
	name       VARCHAR(1024) NOT NULL,
	season     INT NOT NULL,
	episode    INT NOT NULL,
	url        VARCHAR(2048) NOT NULL,
	UNIQUE (series_id, item_hash)
);
CREATE INDEX IF NOT EXISTS idx_episodes_series ON series_episodes (series_id);

CREATE TABLE IF NOT EXISTS watch_history (
	id          BIGSERIAL PRIMARY KEY,
	device_id   VARCHAR(255) NOT NULL,
	item_hash   VARCHAR(255) NOT NULL,
	name        VARCHAR(1024),
	watched_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (device_id, item_hash)
);
CREATE INDEX IF NOT EXISTS idx_watch_history_device ON watch_history (device_id, watched_at DESC);
`

// EnsureSchema creates all tables/indexes if they do not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaDDL)
	return err
}
