// Package sourcedetect decides whether a submitted playlist URL is a
// generic M3U source or an Xtream Codes API endpoint, and validates
// Xtream credentials against the origin.
//
// Grounded on services/ingest/internal/providers/xtream_provider.go's
// HTTP-probe pattern and the original Rust services/xtream/detector.rs's
// extract/validate split.
package sourcedetect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/netguard"
)

// Credentials identifies an Xtream account extracted from a playlist URL.
type Credentials struct {
	Server   string // scheme://host[:port]
	Username string
	Password string
}

// APIURL returns the player_api.php probe URL for these credentials.
func (c Credentials) APIURL() string {
	return fmt.Sprintf("%s/player_api.php?username=%s&password=%s",
		c.Server, url.QueryEscape(c.Username), url.QueryEscape(c.Password))
}

// userInfo mirrors the subset of Xtream's user_info object this package
// needs. Status is deliberately a string: Xtream servers are not
// consistent about typing this field.
type userInfo struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type authResponse struct {
	UserInfo userInfo `json:"user_info"`
}

// ExtractCredentials parses m3uURL and returns Xtream credentials if the
// URL matches the Xtream get.php pattern with non-empty username and
// password query parameters. It returns false (not an error) for any
// non-matching URL — detection failure is not exceptional.
func ExtractCredentials(m3uURL string) (Credentials, bool) {
	parsed, err := url.Parse(m3uURL)
	if err != nil {
		return Credentials{}, false
	}

	if !strings.Contains(strings.ToLower(parsed.Path), "/get.php") {
		return Credentials{}, false
	}

	q := parsed.Query()
	username := q.Get("username")
	password := q.Get("password")
	if username == "" || password == "" {
		return Credentials{}, false
	}

	host := parsed.Host
	if host == "" {
		return Credentials{}, false
	}

	server := fmt.Sprintf("%s://%s", parsed.Scheme, host)
	return Credentials{Server: server, Username: username, Password: password}, true
}

// Client probes Xtream origins to confirm detected credentials are live.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient returns a Client with the given probe timeout and User-Agent.
// The client dials through netguard since the server it probes is
// whatever the caller put in the playlist URL.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: netguard.NewHTTPClient(timeout),
		userAgent:  userAgent,
	}
}

// Validate issues GET {server}/player_api.php with the given credentials
// and confirms the response carries user_info.status == "active"
// (case-insensitive). Any failure — network, non-2xx, non-JSON body, or
// inactive status — is reported as a plain bool, never an error: per
// spec §4.2, detection failures fall back to treating the URL as a
// generic M3U, they are never propagated to the caller.
func (c *Client) Validate(ctx context.Context, creds Credentials) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.APIURL(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return false
	}

	return strings.EqualFold(auth.UserInfo.Status, "active")
}

// Detect is the main entry point: it extracts credentials from url and,
// if found, validates them against the origin. The returned bool is true
// only when both extraction and validation succeed.
func (c *Client) Detect(ctx context.Context, playlistURL string) (Credentials, bool) {
	creds, ok := ExtractCredentials(playlistURL)
	if !ok {
		return Credentials{}, false
	}
	if !c.Validate(ctx, creds) {
		return Credentials{}, false
	}
	return creds, true
}
