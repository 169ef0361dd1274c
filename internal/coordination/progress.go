package coordination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ProgressStatus is the lifecycle state of an ingestion job as seen by
// polling clients.
type ProgressStatus string

const (
	ProgressParsing  ProgressStatus = "parsing"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// navigableThreshold is the items-parsed count past which a client may
// navigate into the (still-filling) playlist early, per spec §4.7.
const navigableThreshold = 500

// Progress is the snapshot document published during ingestion and
// consumed by polling clients.
type Progress struct {
	Status       ProgressStatus `json:"status"`
	Phase        string         `json:"phase,omitempty"`
	ItemsParsed  int            `json:"items_parsed"`
	GroupsCount  int            `json:"groups_count"`
	SeriesCount  int            `json:"series_count"`
	Error        string         `json:"error,omitempty"`
	CanNavigate  bool           `json:"can_navigate"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func progressKey(hash string) string { return fmt.Sprintf("progress:%s", hash) }

// InitProgress writes the initial "parsing" snapshot for a newly
// admitted job.
func (g *Gateway) InitProgress(ctx context.Context, hash string) error {
	return g.writeProgress(ctx, hash, Progress{
		Status:    ProgressParsing,
		UpdatedAt: time.Now(),
	})
}

// ReportProgress implements m3u.ProgressReporter: it overwrites the
// progress snapshot with the latest parse counts, computing CanNavigate
// once itemsParsed crosses the threshold.
func (g *Gateway) ReportProgress(ctx context.Context, itemsParsed, groupsCount, seriesCount int, phase string) {
	g.writeProgress(ctx, g.activeHash, Progress{
		Status:      ProgressParsing,
		Phase:       phase,
		ItemsParsed: itemsParsed,
		GroupsCount: groupsCount,
		SeriesCount: seriesCount,
		CanNavigate: itemsParsed >= navigableThreshold,
		UpdatedAt:   time.Now(),
	})
}

// ForHash returns a gateway bound to hash for use as an m3u.ProgressReporter
// (ReportProgress has no hash parameter of its own, mirroring the narrow
// interface m3u expects). The returned value shares the underlying store.
func (g *Gateway) ForHash(hash string) *Gateway {
	return &Gateway{store: g.store, activeHash: hash}
}

// MarkComplete overwrites the progress snapshot as complete with final
// counts.
func (g *Gateway) MarkComplete(ctx context.Context, hash string, itemsParsed, groupsCount, seriesCount int) error {
	return g.writeProgress(ctx, hash, Progress{
		Status:      ProgressComplete,
		ItemsParsed: itemsParsed,
		GroupsCount: groupsCount,
		SeriesCount: seriesCount,
		CanNavigate: true,
		UpdatedAt:   time.Now(),
	})
}

// MarkFailed overwrites the progress snapshot as failed with an error
// message.
func (g *Gateway) MarkFailed(ctx context.Context, hash string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return g.writeProgress(ctx, hash, Progress{
		Status:    ProgressFailed,
		Error:     msg,
		UpdatedAt: time.Now(),
	})
}

func (g *Gateway) writeProgress(ctx context.Context, hash string, p Progress) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("coordination: marshal progress: %w", err)
	}
	if err := g.store.Set(ctx, progressKey(hash), string(buf), DefaultProgressTTL); err != nil {
		return fmt.Errorf("coordination: write progress: %w", err)
	}
	return nil
}

// GetProgress reads the progress snapshot for hash, if present.
func (g *Gateway) GetProgress(ctx context.Context, hash string) (Progress, bool, error) {
	raw, err := g.store.Get(ctx, progressKey(hash))
	if err == ErrNotFound {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, fmt.Errorf("coordination: get progress: %w", err)
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Progress{}, false, fmt.Errorf("coordination: unmarshal progress: %w", err)
	}
	return p, true, nil
}
