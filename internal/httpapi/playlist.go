package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wayidiomas/ativeplay-mvp/internal/m3u"
	"github.com/wayidiomas/ativeplay-mvp/internal/orchestrator"
	"github.com/wayidiomas/ativeplay-mvp/internal/ratelimit"
	"github.com/wayidiomas/ativeplay-mvp/internal/store"
)

type parseRequest struct {
	URL      string                 `json:"url"`
	DeviceID string                 `json:"deviceId"`
	Options  map[string]interface{} `json:"options"`
}

type groupResponse struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	MediaKind string `json:"mediaKind"`
	ItemCount int    `json:"itemCount"`
	LogoURL   string `json:"logoUrl,omitempty"`
}

func toGroupResponses(rows []store.GroupRow) []groupResponse {
	out := make([]groupResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, groupResponse{Hash: g.Hash, Name: g.Name, MediaKind: g.MediaKind, ItemCount: g.ItemCount, LogoURL: g.LogoURL})
	}
	return out
}

func statsResponse(stats m3u.Stats) map[string]int {
	return map[string]int{
		"total": stats.Total, "live": stats.Live, "movie": stats.Movie,
		"series": stats.Series, "unknown": stats.Unknown, "groups": stats.Groups,
	}
}

// POST /api/playlist/parse
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "invalid_url", "url is required")
		return
	}

	limitKey := req.DeviceID
	if limitKey == "" {
		limitKey = ratelimit.ClientIP(r)
	}
	if !s.enforceRateLimit(w, r, func(l *ratelimit.Limiter) (bool, int) {
		return l.CheckParse(r.Context(), limitKey, s.rateLimitConfig())
	}) {
		return
	}

	result, err := s.Orchestrator.AdmitParse(r.Context(), req.URL, req.DeviceID, clientID(r))
	if errors.Is(err, orchestrator.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "invalid_url", "url must be http or https")
		return
	}
	if err != nil {
		s.logger().Error("httpapi: admit parse failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to start parsing")
		return
	}

	resp := map[string]interface{}{"status": string(result.Status), "hash": result.Hash}
	if result.Status == orchestrator.StatusComplete {
		resp["stats"] = statsResponse(result.Stats)
		resp["groups"] = toGroupResponses(groupRowsFrom(result.Groups))
	}
	writeJSON(w, http.StatusOK, resp)
}

// groupRowsFrom adapts orchestrator's m3u.Group summaries back into the
// store.GroupRow shape toGroupResponses expects, avoiding a second
// response type for the admission-complete path.
func groupRowsFrom(groups []m3u.Group) []store.GroupRow {
	out := make([]store.GroupRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, store.GroupRow{Hash: g.Hash, Name: g.Name, MediaKind: g.MediaKind.String(), ItemCount: g.ItemCount, LogoURL: g.LogoURL})
	}
	return out
}

// GET /api/playlist/:hash/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, hash string) {
	p, found, err := s.Orchestrator.PollProgress(r.Context(), hash)
	if err != nil {
		s.logger().Error("httpapi: poll progress failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read status")
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "unknown", "canNavigate": false})
		return
	}
	resp := map[string]interface{}{
		"status":       string(p.Status),
		"itemsParsed":  p.ItemsParsed,
		"groupsCount":  p.GroupsCount,
		"seriesCount":  p.SeriesCount,
		"currentPhase": p.Phase,
		"canNavigate":  p.CanNavigate,
	}
	if p.Error != "" {
		resp["error"] = p.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/playlist/:hash/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request, hash string) {
	p, err := s.Store.GetPlaylistByHash(r.Context(), clientID(r), hash)
	if err != nil {
		s.logger().Error("httpapi: validate failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to validate playlist")
		return
	}
	if p == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"valid": false, "hash": hash})
		return
	}
	resp := map[string]interface{}{
		"valid":     true,
		"hash":      p.Hash,
		"url":       p.URL,
		"createdAt": p.CreatedAt,
		"stats": statsResponse(m3u.Stats{
			Total: p.TotalItems, Live: p.LiveCount, Movie: p.MovieCount,
			Series: p.SeriesCount, Unknown: p.UnknownCount, Groups: p.GroupCount,
		}),
	}
	if p.ExpiresAt != nil {
		resp["expiresAt"] = *p.ExpiresAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookupPlaylist(w http.ResponseWriter, r *http.Request, hash string) (*store.Playlist, bool) {
	p, err := s.Store.GetPlaylistByHash(r.Context(), clientID(r), hash)
	if err != nil {
		s.logger().Error("httpapi: lookup playlist failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to look up playlist")
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "Playlist not found")
		return nil, false
	}
	return p, true
}

type itemResponse struct {
	Hash       string `json:"hash"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	LogoURL    string `json:"logoUrl,omitempty"`
	GroupName  string `json:"groupName,omitempty"`
	MediaKind  string `json:"mediaKind"`
	Year       *int   `json:"year,omitempty"`
	Season     *int   `json:"season,omitempty"`
	Episode    *int   `json:"episode,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Language   string `json:"language,omitempty"`
	IsDubbed   bool   `json:"isDubbed"`
	IsSubbed   bool   `json:"isSubbed"`
	SeriesHash string `json:"seriesHash,omitempty"`
}

func toItemResponses(rows []store.ItemRow) []itemResponse {
	out := make([]itemResponse, 0, len(rows))
	for _, it := range rows {
		out = append(out, itemResponse{
			Hash: it.Hash, Name: it.Name, URL: it.URL, LogoURL: it.LogoURL, GroupName: it.GroupName,
			MediaKind: it.MediaKind, Year: it.Year, Season: it.Season, Episode: it.Episode,
			Quality: it.Quality, Language: it.Language, IsDubbed: it.IsDubbed, IsSubbed: it.IsSubbed,
			SeriesHash: it.SeriesHash,
		})
	}
	return out
}

// GET /api/playlist/:hash/items
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request, hash string) {
	p, ok := s.lookupPlaylist(w, r, hash)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > s.maxItemsPage() {
		limit = s.maxItemsPage()
	}
	offset := queryInt(r, "offset", 0)

	rows, total, err := s.Store.ListItems(r.Context(), p.ID, store.ListItemsFilter{
		Group: r.URL.Query().Get("group"), MediaKind: r.URL.Query().Get("mediaKind"),
		Limit: limit, Offset: offset,
	})
	if err != nil {
		s.logger().Error("httpapi: list items failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": toItemResponses(rows), "total": total, "limit": limit, "offset": offset,
		"hasMore": offset+len(rows) < total,
	})
}

// GET /api/playlist/:hash/groups
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request, hash string) {
	p, ok := s.lookupPlaylist(w, r, hash)
	if !ok {
		return
	}
	rows, err := s.Store.ListGroups(r.Context(), p.ID, r.URL.Query().Get("mediaKind"))
	if err != nil {
		s.logger().Error("httpapi: list groups failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list groups")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": toGroupResponses(rows), "total": len(rows)})
}

type seriesResponse struct {
	Hash          string `json:"hash"`
	Name          string `json:"name"`
	Group         string `json:"group,omitempty"`
	LogoURL       string `json:"logoUrl,omitempty"`
	Year          *int   `json:"year,omitempty"`
	Quality       string `json:"quality,omitempty"`
	TotalEpisodes int    `json:"totalEpisodes"`
	TotalSeasons  int    `json:"totalSeasons"`
	FirstSeason   *int   `json:"firstSeason,omitempty"`
	LastSeason    *int   `json:"lastSeason,omitempty"`
}

func toSeriesResponses(rows []store.SeriesRow) []seriesResponse {
	out := make([]seriesResponse, 0, len(rows))
	for _, sr := range rows {
		out = append(out, seriesResponse{
			Hash: sr.Hash, Name: sr.Name, Group: sr.Group, LogoURL: sr.LogoURL, Year: sr.Year,
			Quality: sr.Quality, TotalEpisodes: sr.TotalEpisodes, TotalSeasons: sr.TotalSeasons,
			FirstSeason: sr.FirstSeason, LastSeason: sr.LastSeason,
		})
	}
	return out
}

// GET /api/playlist/:hash/series
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request, hash string) {
	p, ok := s.lookupPlaylist(w, r, hash)
	if !ok {
		return
	}
	rows, err := s.Store.ListSeries(r.Context(), p.ID)
	if err != nil {
		s.logger().Error("httpapi: list series failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list series")
		return
	}
	group := r.URL.Query().Get("group")
	if group != "" {
		filtered := rows[:0]
		for _, sr := range rows {
			if sr.Group == group {
				filtered = append(filtered, sr)
			}
		}
		rows = filtered
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"series": toSeriesResponses(rows), "total": len(rows)})
}

// GET /api/playlist/:hash/series/:id/episodes
func (s *Server) handleSeriesEpisodes(w http.ResponseWriter, r *http.Request, hash, seriesHash string) {
	p, ok := s.lookupPlaylist(w, r, hash)
	if !ok {
		return
	}
	detail, err := s.Store.GetSeriesDetail(r.Context(), p.ID, seriesHash)
	if err != nil {
		s.logger().Error("httpapi: get series detail failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get series")
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "not_found", "Series not found")
		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	var allEpisodes []m3u.SeriesEpisode
	for _, season := range detail.Seasons {
		allEpisodes = append(allEpisodes, season.Episodes...)
	}
	total := len(allEpisodes)
	end := offset + limit
	if end > total {
		end = total
	}
	var page []m3u.SeriesEpisode
	if offset < total {
		page = allEpisodes[offset:end]
	}

	resp := map[string]interface{}{
		"seriesName": detail.Name, "episodes": page, "total": total,
		"limit": limit, "offset": offset, "hasMore": offset+len(page) < total,
	}
	if offset == 0 {
		resp["seasonsData"] = detail.Seasons
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/playlist/:hash/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, hash string) {
	p, ok := s.lookupPlaylist(w, r, hash)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "q is required")
		return
	}
	limit := queryInt(r, "limit", 20)

	rows, err := s.Store.SearchItems(r.Context(), p.ID, q, limit)
	if err != nil {
		s.logger().Error("httpapi: search items failed", "hash", hash, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": toItemResponses(rows), "query": q, "total": len(rows), "limit": limit,
	})
}
