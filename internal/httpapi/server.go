// Package httpapi implements the HTTP surface: playlist admission and
// browsing, the HLS proxy, and device hand-off sessions.
//
// Grounded on services/catalog/cmd/catalog/main.go's writeJSON/
// writeError/pathSegment helpers and its manual ServeMux-plus-segment-
// dispatch routing style, and services/streams/iptv_handler.go's
// handler-per-concern layout.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/coordination"
	"github.com/wayidiomas/ativeplay-mvp/internal/orchestrator"
	"github.com/wayidiomas/ativeplay-mvp/internal/proxy"
	"github.com/wayidiomas/ativeplay-mvp/internal/ratelimit"
	"github.com/wayidiomas/ativeplay-mvp/internal/store"
)

// Server wires the orchestrator, store, coordination gateway, and HLS
// proxy into HTTP handlers.
type Server struct {
	Orchestrator *orchestrator.Orchestrator
	Store        *store.Store
	Coord        *coordination.Gateway
	Proxy        *proxy.Proxy
	RateLimiter  *ratelimit.Limiter
	MaxItemsPage int
	SessionTTL   time.Duration
	BaseURL      string
	Log          *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Server) maxItemsPage() int {
	if s.MaxItemsPage <= 0 {
		return 5000
	}
	return s.MaxItemsPage
}

// rateLimitConfig returns the effective rate limit thresholds. A nil
// RateLimiter leaves the thresholds unused (the limiter itself is a
// no-op), so this always returns production defaults.
func (s *Server) rateLimitConfig() ratelimit.RateLimitConfig {
	return ratelimit.DefaultRateLimits()
}

// enforceRateLimit runs a rate-limit check and, if exceeded, writes a
// 429 with Retry-After and returns false. A nil RateLimiter always
// allows.
func (s *Server) enforceRateLimit(w http.ResponseWriter, r *http.Request, check func(*ratelimit.Limiter) (bool, int)) bool {
	if s.RateLimiter == nil {
		return true
	}
	allowed, retryAfter := check(s.RateLimiter)
	if allowed {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
	return false
}

// Router builds the top-level mux.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/api/playlist/parse", s.handleParse)
	mux.HandleFunc("/api/playlist/", s.handlePlaylistPrefix)

	mux.HandleFunc("/api/proxy/hls", s.handleProxyHLS)

	mux.HandleFunc("/session/create", s.handleSessionCreate)
	mux.HandleFunc("/session/", s.handleSessionPrefix)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "ativeplay-ingest"})
}

// handlePlaylistPrefix disambiguates every /api/playlist/{hash}/... route
// by trailing segment, the same way catalog's /admin/channels/ handler
// disambiguates /admin/channels/{id} from /admin/channels/{id}/logo.
func (s *Server) handlePlaylistPrefix(w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// segments[0]=="api", [1]=="playlist", [2]==hash, [3]==action, ...
	if len(segments) < 4 {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	hash := segments[2]

	switch segments[3] {
	case "status":
		s.handleStatus(w, r, hash)
	case "items":
		s.handleItems(w, r, hash)
	case "groups":
		s.handleGroups(w, r, hash)
	case "series":
		if len(segments) >= 6 && segments[5] == "episodes" {
			s.handleSeriesEpisodes(w, r, hash, segments[4])
			return
		}
		s.handleSeries(w, r, hash)
	case "search":
		s.handleSearch(w, r, hash)
	case "validate":
		s.handleValidate(w, r, hash)
	default:
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	}
}

func (s *Server) handleSessionPrefix(w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// segments[0]=="session", [1]==id, [2]==action
	if len(segments) < 3 {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	id := segments[1]
	switch segments[2] {
	case "poll":
		s.handleSessionPoll(w, r, id)
	case "send":
		s.handleSessionSend(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	}
}

// clientID reads the tenant-scoping header. Empty means the NULL
// client_id bucket, treated as a distinct scope of its own.
func clientID(r *http.Request) string {
	return r.Header.Get("X-Client-Id")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {error, message} shape used throughout. msg is
// always the user-friendly string; technical detail stays in the logs.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
