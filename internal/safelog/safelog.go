// Package safelog strips credentials and query parameters from
// upstream URLs before they reach a log line.
//
// Xtream and raw M3U URLs routinely carry a username/password pair (as
// userinfo or as username=/password= query params) or an access token.
// Logging them verbatim on every fetch failure would put subscriber
// credentials in the log stream. Adapted from the pack's stream-endpoint
// zero-logging allowlist policy (permit the shape of a request, never
// the identifying value).
package safelog

import "net/url"

// Origin reduces a URL to scheme://host/path, dropping userinfo and the
// query string. Returns the original string unchanged if it does not
// parse as a URL, since an unparsed string has no structured credential
// fields to strip.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
