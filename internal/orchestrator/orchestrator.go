// Package orchestrator implements the ingestion orchestrator (component
// C7): parse admission (dedup by hash, device reassignment, progress
// polling) and the background job that actually runs detection and
// parsing.
//
// Grounded on the admission/background-job split described in spec
// §4.7; no single teacher file matches this shape directly, so the
// job's acquire-lock/run/release-lock-in-all-cases structure is built
// from the processing-lock semantics in
// server/internal/ratelimit/ratelimit.go's fail-open philosophy
// (errors here fail the job, not silently pass) and the
// handler-spawns-goroutine pattern used throughout the teacher's
// services for non-blocking background work.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/wayidiomas/ativeplay-mvp/internal/classifier"
	"github.com/wayidiomas/ativeplay-mvp/internal/coordination"
	"github.com/wayidiomas/ativeplay-mvp/internal/hashutil"
	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
	"github.com/wayidiomas/ativeplay-mvp/internal/sourcedetect"
	"github.com/wayidiomas/ativeplay-mvp/internal/store"
	"github.com/wayidiomas/ativeplay-mvp/internal/xtream"
)

// playlistExpiry is the TTL applied to a playlist on successful
// ingestion or re-attachment (spec §4.7: "expires_at = now + 1 day").
const playlistExpiry = 24 * time.Hour

// processingLockTTL is the ingestion lock's TTL (spec §4.7: "10 min
// TTL").
const processingLockTTL = 10 * time.Minute

// Orchestrator wires together the persistent store, coordination store,
// source detector, classifier, and HTTP client that a parse admission
// and its background job need.
type Orchestrator struct {
	Store      *store.Store
	Coord      *coordination.Gateway
	Detector   *sourcedetect.Client
	Classifier *classifier.Classifier
	HTTPClient *http.Client
	UserAgent  string
	MaxRetries int
	MaxSizeMB  int64
	Log        *slog.Logger
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// AdmitStatus is the status reported back to the HTTP layer.
type AdmitStatus string

const (
	StatusParsing  AdmitStatus = "parsing"
	StatusComplete AdmitStatus = "complete"
)

// AdmitResult is the response to a parse-admission request.
type AdmitResult struct {
	Status AdmitStatus
	Hash   string
	Stats  m3u.Stats
	Groups []m3u.Group
}

// ErrInvalidURL is returned when the submitted playlist URL is not
// http(s).
var ErrInvalidURL = errors.New("orchestrator: url must be http or https")

// AdmitParse implements spec §4.7's admission flow: validate, compute
// hash, evict the device's prior playlist, short-circuit on an
// in-flight or already-complete playlist, otherwise spawn a background
// job and return immediately.
func (o *Orchestrator) AdmitParse(ctx context.Context, playlistURL, deviceID, clientID string) (AdmitResult, error) {
	parsed, err := url.Parse(playlistURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return AdmitResult{}, ErrInvalidURL
	}

	hash := hashutil.PlaylistHash(playlistURL)

	if deviceID != "" {
		if err := o.Store.DeleteByDevice(ctx, deviceID); err != nil {
			return AdmitResult{}, err
		}
	}

	if p, found, err := o.Coord.GetProgress(ctx, hash); err != nil {
		return AdmitResult{}, err
	} else if found && p.Status == coordination.ProgressParsing {
		return AdmitResult{Status: StatusParsing, Hash: hash}, nil
	}

	existing, err := o.Store.GetPlaylistByHash(ctx, "", hash)
	if err != nil {
		return AdmitResult{}, err
	}
	if existing != nil && existing.TotalItems > 0 {
		if deviceID != "" {
			if err := o.Store.AttachDevice(ctx, existing.ID, deviceID, playlistExpiry); err != nil {
				return AdmitResult{}, err
			}
		} else if err := o.Store.RefreshExpiry(ctx, existing.ID, playlistExpiry); err != nil {
			return AdmitResult{}, err
		}
		groups, err := o.Store.ListGroups(ctx, existing.ID, "")
		if err != nil {
			return AdmitResult{}, err
		}
		return AdmitResult{
			Status: StatusComplete,
			Hash:   hash,
			Stats: m3u.Stats{
				Total: existing.TotalItems, Live: existing.LiveCount, Movie: existing.MovieCount,
				Series: existing.SeriesCount, Unknown: existing.UnknownCount, Groups: existing.GroupCount,
			},
			Groups: toGroupSummaries(groups),
		}, nil
	}

	if err := o.Coord.InitProgress(ctx, hash); err != nil {
		return AdmitResult{}, err
	}

	jobID := uuid.NewString()
	go o.runJob(context.Background(), jobID, hash, playlistURL, deviceID, clientID)

	return AdmitResult{Status: StatusParsing, Hash: hash}, nil
}

func toGroupSummaries(rows []store.GroupRow) []m3u.Group {
	out := make([]m3u.Group, 0, len(rows))
	for _, r := range rows {
		out = append(out, m3u.Group{
			Hash: r.Hash, Name: r.Name, MediaKind: classifierKind(r.MediaKind),
			ItemCount: r.ItemCount, LogoURL: r.LogoURL,
		})
	}
	return out
}

func classifierKind(s string) classifier.MediaKind {
	switch s {
	case "live":
		return classifier.Live
	case "movie":
		return classifier.Movie
	case "series":
		return classifier.Series
	default:
		return classifier.Unknown
	}
}

// runJob is the background job body: acquire the lock, detect the
// source, run the matching pipeline, release the lock unconditionally.
func (o *Orchestrator) runJob(ctx context.Context, jobID, hash, playlistURL, deviceID, clientID string) {
	acquired, err := o.Coord.AcquireProcessingLock(ctx, hash, jobID, processingLockTTL)
	if err != nil || !acquired {
		o.Coord.MarkFailed(ctx, hash, fmt.Errorf("orchestrator: processing lock unavailable: %w", err))
		return
	}
	defer o.Coord.ReleaseProcessingLock(ctx, hash)

	if creds, ok := o.Detector.Detect(ctx, playlistURL); ok {
		o.runXtream(ctx, hash, deviceID, clientID, creds)
		return
	}
	o.runM3U(ctx, hash, playlistURL, deviceID, clientID)
}

// runXtream ingests an Xtream account: it fetches live, VOD, and series
// catalogs via the player_api.php endpoints and persists them the same
// way runM3U persists a parsed M3U body, instead of only recording the
// account's credentials.
func (o *Orchestrator) runXtream(ctx context.Context, hash, deviceID, clientID string, creds sourcedetect.Credentials) {
	p, err := o.Store.UpsertXtreamPlaylist(ctx, clientID, hash, creds.Server, creds.Username, creds.Password,
		0, false, nil, m3u.Stats{})
	if err != nil {
		o.Coord.MarkFailed(ctx, hash, err)
		return
	}

	client := xtream.NewClient(creds.Server, creds.Username, creds.Password, o.xtreamTimeout(), o.UserAgent)

	writer, err := store.NewBulkItemWriter(ctx, o.Store.DB(), p.ID)
	if err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	result, err := o.ingestXtream(ctx, client, writer, hash)
	if err != nil {
		writer.Abort()
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	if _, err := writer.Finish(ctx); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	if err := o.Store.SaveGroups(ctx, p.ID, result.Groups); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	if err := o.Store.SaveSeries(ctx, p.ID, result.Series); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	if _, err := o.Store.UpsertXtreamPlaylist(ctx, clientID, hash, creds.Server, creds.Username, creds.Password,
		0, false, nil, result.Stats); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	if deviceID != "" {
		if err := o.Store.AttachDevice(ctx, p.ID, deviceID, playlistExpiry); err != nil {
			o.failJob(ctx, hash, p.ID, err)
			return
		}
	} else if err := o.Store.RefreshExpiry(ctx, p.ID, playlistExpiry); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	o.Coord.MarkComplete(ctx, hash, result.Stats.Total, result.Stats.Groups, len(result.Groups))
}

// xtreamTimeout derives a per-request timeout for the Xtream API client
// from the orchestrator's shared HTTP client, falling back to a
// reasonable default when none is configured.
func (o *Orchestrator) xtreamTimeout() time.Duration {
	if o.HTTPClient != nil && o.HTTPClient.Timeout > 0 {
		return o.HTTPClient.Timeout
	}
	return 30 * time.Second
}

func (o *Orchestrator) runM3U(ctx context.Context, hash, playlistURL, deviceID, clientID string) {
	p, err := o.Store.UpsertPlaylist(ctx, clientID, hash, playlistURL, m3u.Stats{})
	if err != nil {
		o.Coord.MarkFailed(ctx, hash, err)
		return
	}

	resp, err := m3u.FetchWithRetry(ctx, o.HTTPClient, playlistURL, o.MaxRetries, o.MaxSizeMB, o.UserAgent)
	if err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	defer resp.Body.Close()

	body := m3u.WithLineTimeout(resp.Body, 10*time.Second)

	writer, err := store.NewBulkItemWriter(ctx, o.Store.DB(), p.ID)
	if err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	result, err := m3u.Parse(ctx, body, o.Classifier, writer, o.Coord.ForHash(hash), nil, m3u.Options{})
	if err != nil {
		writer.Abort()
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	if err := o.Store.SaveGroups(ctx, p.ID, result.Groups); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	if err := o.Store.SaveSeries(ctx, p.ID, result.Series); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}
	if _, err := o.Store.UpsertPlaylist(ctx, clientID, hash, playlistURL, result.Stats); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	if deviceID != "" {
		if err := o.Store.AttachDevice(ctx, p.ID, deviceID, playlistExpiry); err != nil {
			o.failJob(ctx, hash, p.ID, err)
			return
		}
	} else if err := o.Store.RefreshExpiry(ctx, p.ID, playlistExpiry); err != nil {
		o.failJob(ctx, hash, p.ID, err)
		return
	}

	o.Coord.MarkComplete(ctx, hash, result.Stats.Total, result.Stats.Groups, len(result.Groups))
}

// failJob deletes the partial playlist row and marks progress failed,
// per spec §4.7's "On failure, delete the partial playlist, mark
// progress failed with the error message."
func (o *Orchestrator) failJob(ctx context.Context, hash string, playlistID int64, cause error) {
	if err := o.Store.DeletePlaylist(ctx, playlistID); err != nil {
		o.logger().Error("orchestrator: cleanup partial playlist failed", "hash", hash, "error", err)
	}
	o.logger().Warn("orchestrator: ingestion job failed", "hash", hash, "error", cause)
	o.Coord.MarkFailed(ctx, hash, cause)
}

// PollProgress implements spec §4.7's progress-polling GET: return the
// live progress record if present, else synthesize one from a completed
// playlist, else report not found.
func (o *Orchestrator) PollProgress(ctx context.Context, hash string) (coordination.Progress, bool, error) {
	// An Orchestrator without its stores (the zero value) knows no playlist.
	if o.Coord == nil || o.Store == nil {
		return coordination.Progress{}, false, nil
	}
	if p, found, err := o.Coord.GetProgress(ctx, hash); err != nil {
		return coordination.Progress{}, false, err
	} else if found {
		return p, true, nil
	}

	p, err := o.Store.GetPlaylistByHash(ctx, "", hash)
	if err != nil {
		return coordination.Progress{}, false, err
	}
	if p != nil && p.TotalItems > 0 {
		return coordination.Progress{
			Status:      coordination.ProgressComplete,
			ItemsParsed: p.TotalItems,
			GroupsCount: p.GroupCount,
			SeriesCount: p.SeriesCount,
			CanNavigate: true,
			UpdatedAt:   p.UpdatedAt,
		}, true, nil
	}
	return coordination.Progress{}, false, nil
}
