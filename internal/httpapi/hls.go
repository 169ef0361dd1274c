package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/wayidiomas/ativeplay-mvp/internal/proxy"
	"github.com/wayidiomas/ativeplay-mvp/internal/ratelimit"
	"github.com/wayidiomas/ativeplay-mvp/internal/safelog"
)

// GET /api/proxy/hls
func (s *Server) handleProxyHLS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}
	origin := r.URL.Query().Get("url")
	if origin == "" {
		writeError(w, http.StatusBadRequest, "invalid_url", "url is required")
		return
	}
	referer := r.URL.Query().Get("referer")

	limitKey := clientID(r)
	if limitKey == "" {
		limitKey = ratelimit.ClientIP(r)
	}
	if !s.enforceRateLimit(w, r, func(l *ratelimit.Limiter) (bool, int) {
		return l.CheckProxy(r.Context(), limitKey, s.rateLimitConfig())
	}) {
		return
	}

	result, err := s.Proxy.Fetch(r.Context(), origin, referer, r.Header.Get("Accept"), r.Header.Get("Range"))
	if errors.Is(err, proxy.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "invalid_url", "url must be http or https")
		return
	}
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger().Warn("httpapi: hls proxy fetch failed", "origin", safelog.Origin(origin), "error", err)
		writeError(w, status, "upstream_error", "Failed to fetch stream")
		return
	}

	if result.Manifest != nil {
		w.Header().Set("Content-Type", result.ContentType)
		w.WriteHeader(result.StatusCode)
		_, _ = w.Write(result.Manifest)
		return
	}

	defer result.Body.Close()
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	if result.ContentLength != "" {
		w.Header().Set("Content-Length", result.ContentLength)
	}
	if result.AcceptRanges != "" {
		w.Header().Set("Accept-Ranges", result.AcceptRanges)
	}
	if result.ETag != "" {
		w.Header().Set("ETag", result.ETag)
	}
	if result.LastModified != "" {
		w.Header().Set("Last-Modified", result.LastModified)
	}
	w.WriteHeader(result.StatusCode)
	_, _ = io.Copy(w, result.Body)
}
