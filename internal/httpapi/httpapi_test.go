package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayidiomas/ativeplay-mvp/internal/orchestrator"
)

func TestHandleParseRejectsMissingURL(t *testing.T) {
	s := &Server{Orchestrator: &orchestrator.Orchestrator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/playlist/parse", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	s.handleParse(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleParseRejectsInvalidScheme(t *testing.T) {
	s := &Server{Orchestrator: &orchestrator.Orchestrator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/playlist/parse", strings.NewReader(`{"url":"ftp://x/y.m3u"}`))
	rec := httptest.NewRecorder()

	s.handleParse(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlaylistPrefixDispatchesByAction(t *testing.T) {
	s := &Server{Orchestrator: &orchestrator.Orchestrator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/playlist/deadbeef/status", nil)
	rec := httptest.NewRecorder()

	s.handlePlaylistPrefix(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}

func TestHandlePlaylistPrefixUnknownActionNotFound(t *testing.T) {
	s := &Server{Orchestrator: &orchestrator.Orchestrator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/playlist/deadbeef/bogus", nil)
	rec := httptest.NewRecorder()

	s.handlePlaylistPrefix(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEncodeQRDataURLProducesPNGDataURL(t *testing.T) {
	out, err := encodeQRDataURL("https://example.com/mobile/session/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/png;base64,"))
}
