package coordination

import (
	"context"
	"fmt"
	"time"
)

func processingKey(hash string) string { return fmt.Sprintf("processing:%s", hash) }

// AcquireProcessingLock attempts the SET-IF-NOT-EXISTS lock for hash,
// holding jobID as the value. Returns false if another job already
// holds the lock (spec §4.7: "Acquire the processing lock (10 min
// TTL). If denied, mark progress failed.").
func (g *Gateway) AcquireProcessingLock(ctx context.Context, hash, jobID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultProcessingTTL
	}
	ok, err := g.store.SetNX(ctx, processingKey(hash), jobID, ttl)
	if err != nil {
		return false, fmt.Errorf("coordination: acquire lock: %w", err)
	}
	return ok, nil
}

// ReleaseProcessingLock deletes the lock key. Called unconditionally
// by the orchestrator once a job finishes, success or failure.
func (g *Gateway) ReleaseProcessingLock(ctx context.Context, hash string) error {
	if err := g.store.Del(ctx, processingKey(hash)); err != nil {
		return fmt.Errorf("coordination: release lock: %w", err)
	}
	return nil
}
