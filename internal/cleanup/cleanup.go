// Package cleanup implements the cleanup worker (component C9): a
// background loop that deletes expired playlists and trims per-device
// watch history.
//
// Grounded on server/services/streams/health_worker.go's
// immediate-run-then-ticker-loop shape (time.NewTicker plus a select
// over the ticker channel and ctx.Done(), logging errors without
// aborting the loop) — the same background-worker pattern, repurposed
// from periodic health probing to periodic expired-playlist deletion
// and watch-history trimming via C5's DeleteExpiredPlaylists and
// TrimWatchHistory.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/store"
)

// defaultInterval is how often the worker runs when none is given
// (spec §4.9: "runs every 3600s").
const defaultInterval = time.Hour

// defaultWatchHistoryKeep is how many recent watch entries are kept
// per device (spec §4.9: "keep the most recent 100 per device").
const defaultWatchHistoryKeep = 100

// Worker periodically deletes expired playlists and trims watch
// history.
type Worker struct {
	Store     *store.Store
	Log       *slog.Logger
	Interval  time.Duration
	WatchKeep int
}

func (w *Worker) logger() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return defaultInterval
	}
	return w.Interval
}

func (w *Worker) watchKeep() int {
	if w.WatchKeep <= 0 {
		return defaultWatchHistoryKeep
	}
	return w.WatchKeep
}

// Start runs one pass immediately, then repeats on Interval until ctx
// is cancelled. Meant to be launched in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce performs a single cleanup pass. Errors are logged and never
// abort the loop, matching the teacher's health-check worker posture.
func (w *Worker) runOnce(ctx context.Context) {
	deleted, err := w.Store.DeleteExpiredPlaylists(ctx)
	if err != nil {
		w.logger().Error("cleanup: delete expired playlists failed", "error", err)
	} else if deleted > 0 {
		w.logger().Info("cleanup: deleted expired playlists", "count", deleted)
	}

	trimmed, err := w.Store.TrimWatchHistory(ctx, w.watchKeep())
	if err != nil {
		w.logger().Error("cleanup: trim watch history failed", "error", err)
	} else if trimmed > 0 {
		w.logger().Info("cleanup: trimmed watch history rows", "count", trimmed)
	}
}
