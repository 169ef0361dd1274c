package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
)

func nowPlus(d time.Duration) time.Time {
	return time.Now().Add(d)
}

// qrImageSize is the pixel dimension of the generated session QR code.
const qrImageSize = 256

// sessionIDHexLen is the session id length: 12 hex characters (spec's
// Glossary: "Session (ephemeral). session_id (12-hex)"), not a full
// UUID.
const sessionIDHexLen = 12

// newSessionID returns a 12-hex session id by stripping a generated
// UUID's dashes and truncating.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionIDHexLen]
}

// POST /session/create
func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	sessionID := newSessionID()
	if err := s.Coord.CreateSession(r.Context(), sessionID, s.SessionTTL); err != nil {
		s.logger().Error("httpapi: create session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create session")
		return
	}

	mobileURL := s.BaseURL + "/mobile/session/" + sessionID
	qrDataURL, err := encodeQRDataURL(mobileURL)
	if err != nil {
		s.logger().Error("httpapi: encode session qr failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build session QR code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"qrDataUrl": qrDataURL,
		"mobileUrl": mobileURL,
		"expiresAt": nowPlus(s.SessionTTL),
	})
}

// GET /session/:id/poll
func (s *Server) handleSessionPoll(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}
	session, found, err := s.Coord.PollSession(r.Context(), id)
	if err != nil {
		s.logger().Error("httpapi: poll session failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to poll session")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "Session not found")
		return
	}
	resp := map[string]interface{}{"received": session.URL != ""}
	if session.URL != "" {
		resp["url"] = session.URL
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionSendRequest struct {
	URL string `json:"url"`
}

// POST /session/:id/send
func (s *Server) handleSessionSend(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	var req sessionSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_json", "url is required")
		return
	}
	ok, err := s.Coord.SendSession(r.Context(), id, req.URL, s.SessionTTL)
	if err != nil {
		s.logger().Error("httpapi: send session failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to deliver session URL")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "delivered"})
}

// encodeQRDataURL renders content as a QR code PNG and returns it as a
// "data:image/png;base64,..." string the mobile hand-off screen can
// render directly into an <img> tag.
//
// boombuler/barcode was already present in the dependency tree
// (transitively, unused by any importer); this is its only direct
// import in the module.
func encodeQRDataURL(content string) (string, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}
	scaled, err := barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
