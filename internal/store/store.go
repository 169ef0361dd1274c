// Package store is the persistent store gateway (component C5): typed
// operations over playlists, groups, items, series, and episodes,
// backed by Postgres via database/sql and lib/pq, with a bulk-copy
// streaming writer for item ingestion.
//
// Grounded on services/catalog/cmd/catalog/main.go's connectDB/writeJSON
// style and dynamic-update-set pattern, generalized from a single-table
// admin CRUD service to the playlist/group/item/series/episode schema
// this spec requires.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Store wraps a Postgres connection pool.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and verifies connectivity with a bounded ping.
func Open(dsn string, maxConns int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying pool for components (the bulk writer,
// schema setup) that need direct transaction control.
func (s *Store) DB() *sql.DB { return s.db }
