package store

import (
	"context"
	"fmt"
)

// RecordWatch upserts a watch-history entry for (deviceID, itemHash),
// refreshing watched_at to now.
func (s *Store) RecordWatch(ctx context.Context, deviceID, itemHash, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_history (device_id, item_hash, name, watched_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (device_id, item_hash) DO UPDATE SET watched_at = now(), name = EXCLUDED.name`,
		deviceID, itemHash, copySafe(name, nameLimit))
	if err != nil {
		return fmt.Errorf("store: record watch: %w", err)
	}
	return nil
}

// TrimWatchHistory keeps only the keep most recent watch_history rows per
// device, deleting the rest. Used by the cleanup worker (C9).
func (s *Store) TrimWatchHistory(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM watch_history WHERE id IN (
			SELECT id FROM (
				SELECT id, row_number() OVER (PARTITION BY device_id ORDER BY watched_at DESC) AS rn
				FROM watch_history
			) ranked WHERE rn > $1
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("store: trim watch history: %w", err)
	}
	return res.RowsAffected()
}
