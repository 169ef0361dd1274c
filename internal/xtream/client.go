// Package xtream implements the Xtream Codes adapter (component C4): it
// consumes the remote "Player API v2" JSON endpoints in place of parsing
// an M3U stream, normalizing the notoriously inconsistent field typing
// Xtream servers return.
//
// Grounded on services/ingest/internal/providers/xtream_provider.go's
// apiCall/buildStreamURL pattern, generalized to the full endpoint set
// and normalization rules in spec §4.4.
package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/netguard"
)

// Client calls a single Xtream account's player_api.php endpoints.
type Client struct {
	server     string // scheme://host[:port], no trailing slash
	username   string
	password   string
	httpClient *http.Client
	userAgent  string
}

// NewClient returns a Client for the given account. The client dials
// through netguard since server is whatever the caller put in the
// playlist URL.
func NewClient(server, username, password string, timeout time.Duration, userAgent string) *Client {
	return &Client{
		server:     server,
		username:   username,
		password:   password,
		httpClient: netguard.NewHTTPClient(timeout),
		userAgent:  userAgent,
	}
}

func (c *Client) apiURL(action string, extra url.Values) string {
	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)
	if action != "" {
		q.Set("action", action)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return fmt.Sprintf("%s/player_api.php?%s", c.server, q.Encode())
}

// apiCall issues the GET and decodes the JSON body into dest. It never
// returns a bare error: failures are always *Error with a terminal Kind,
// per spec §4.4's four-outcome contract.
func (c *Client) apiCall(ctx context.Context, action string, extra url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(action, extra), nil)
	if err != nil {
		return networkErr(action, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkErr(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpErr(action, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		// An empty body leaves dest at its zero value: list endpoints
		// return an empty list, detail endpoints report ErrEmptyResponse.
		if err == io.EOF {
			return nil
		}
		return parseErr(action, err)
	}
	return nil
}

func (c *Client) GetLiveCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.apiCall(ctx, "get_live_categories", nil, &out); err != nil {
		if e, ok := err.(*Error); ok && e.Kind == ErrEmptyResponse {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVODCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.apiCall(ctx, "get_vod_categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSeriesCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.apiCall(ctx, "get_series_categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLiveStreams(ctx context.Context, categoryID string) ([]LiveStream, error) {
	extra := url.Values{}
	if categoryID != "" {
		extra.Set("category_id", categoryID)
	}
	var out []LiveStream
	if err := c.apiCall(ctx, "get_live_streams", extra, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVODStreams(ctx context.Context, categoryID string) ([]VODStream, error) {
	extra := url.Values{}
	if categoryID != "" {
		extra.Set("category_id", categoryID)
	}
	var out []VODStream
	if err := c.apiCall(ctx, "get_vod_streams", extra, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVODInfo(ctx context.Context, vodID string) (*VODInfo, error) {
	extra := url.Values{"vod_id": {vodID}}
	var out VODInfo
	if err := c.apiCall(ctx, "get_vod_info", extra, &out); err != nil {
		return nil, err
	}
	if out.Info.Name == "" && out.MovieData.StreamID == 0 {
		return nil, emptyResponseErr("get_vod_info")
	}
	return &out, nil
}

func (c *Client) GetSeries(ctx context.Context, categoryID string) ([]SeriesListing, error) {
	extra := url.Values{}
	if categoryID != "" {
		extra.Set("category_id", categoryID)
	}
	var out []SeriesListing
	if err := c.apiCall(ctx, "get_series", extra, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSeriesInfo(ctx context.Context, seriesID string) (*SeriesInfoResponse, error) {
	extra := url.Values{"series_id": {seriesID}}
	var out SeriesInfoResponse
	if err := c.apiCall(ctx, "get_series_info", extra, &out); err != nil {
		return nil, err
	}
	if out.Info.Name == "" && len(out.Episodes) == 0 {
		return nil, emptyResponseErr("get_series_info")
	}
	return &out, nil
}

func (c *Client) GetShortEPG(ctx context.Context, streamID string, limit int) ([]ShortEPGEntry, error) {
	extra := url.Values{"stream_id": {streamID}}
	if limit > 0 {
		extra.Set("limit", fmt.Sprintf("%d", limit))
	}
	var out shortEPGResponse
	if err := c.apiCall(ctx, "get_short_epg", extra, &out); err != nil {
		if e, ok := err.(*Error); ok && e.Kind == ErrEmptyResponse {
			return nil, nil
		}
		return nil, err
	}
	return out.EPGListings, nil
}

// ---- playback URL construction (spec §4.4) --------------------------------

// LiveStreamURL builds a live playback URL. ext defaults to "ts" when
// empty.
func (c *Client) LiveStreamURL(streamID, ext string) string {
	if ext == "" {
		ext = "ts"
	}
	return fmt.Sprintf("%s/live/%s/%s/%d.%s", c.server, c.username, c.password, mustAtoiFlex(streamID), ext)
}

// VODStreamURL builds a VOD playback URL. ext defaults to "mp4" when
// empty.
func (c *Client) VODStreamURL(streamID, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("%s/movie/%s/%s/%s.%s", c.server, c.username, c.password, streamID, ext)
}

// SeriesEpisodeURL builds a series-episode playback URL. ext defaults to
// "mp4" when empty.
func (c *Client) SeriesEpisodeURL(episodeID, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("%s/series/%s/%s/%s.%s", c.server, c.username, c.password, episodeID, ext)
}

// XMLTVURL builds the XMLTV EPG export URL.
func (c *Client) XMLTVURL() string {
	return fmt.Sprintf("%s/xmltv.php?username=%s&password=%s", c.server, url.QueryEscape(c.username), url.QueryEscape(c.password))
}

// TimeshiftURL builds a timeshift playback URL for streamID starting at
// startUnix for durationMinutes.
func (c *Client) TimeshiftURL(streamID string, startUnix int64, durationMinutes int) string {
	return fmt.Sprintf("%s/streaming/timeshift.php?username=%s&password=%s&stream=%s&start=%d&duration=%d",
		c.server, url.QueryEscape(c.username), url.QueryEscape(c.password), streamID, startUnix, durationMinutes)
}

func mustAtoiFlex(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}
