// Package proxy implements the HLS manifest proxy (component C8): it
// fetches a manifest or segment on the caller's behalf, rewriting
// manifest URIs to route subsequent segment/key fetches back through
// this proxy, and passes segments through unmodified.
//
// Grounded on server/services/relay/internal/cdnrouter's HTTP-client-
// with-timeout and status-passthrough style, generalized from CDN
// routing to manifest rewriting; header/Range/ETag passthrough follows
// the request/response shape used throughout the teacher's handler
// files (e.g. services/streams/iptv_handler.go's writeJSON/errResp
// convention, adapted here to a byte-stream response instead of JSON).
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/wayidiomas/ativeplay-mvp/internal/netguard"
)

// ErrInvalidURL is returned when the requested origin URL is not
// http(s).
var ErrInvalidURL = errors.New("proxy: url must be http or https")

// maxRedirects bounds manifest/segment redirect following (spec §4.8:
// "Redirects followed up to 10").
const maxRedirects = 10

// Proxy fetches and rewrites HLS manifests, and passes segments through
// unmodified.
type Proxy struct {
	HTTPClient      *http.Client
	ManifestTimeout time.Duration
	BaseURL         string // this service's own externally visible base URL
}

// New returns a Proxy whose manifest fetches are bounded by
// manifestTimeout and whose rewritten URIs point back at baseURL. The
// client dials through netguard so a submitted manifest/segment URL
// can't be used to reach internal infrastructure.
func New(manifestTimeout time.Duration, baseURL string) *Proxy {
	client := netguard.NewHTTPClient(0)
	client.CheckRedirect = redirectPolicy
	return &Proxy{
		HTTPClient:      client,
		ManifestTimeout: manifestTimeout,
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
	}
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("proxy: stopped after %d redirects", maxRedirects)
	}
	return nil
}

// Fetch validates originURL, issues the request (forwarding Accept,
// Range, and an optional Referer), and returns either a rewritten
// manifest body or the raw response for passthrough streaming.
//
// The caller is responsible for closing result.Body when err is nil and
// result.Manifest is nil (passthrough case); a manifest result has
// already consumed and closed the origin response.
func (p *Proxy) Fetch(ctx context.Context, originURL, referer string, accept, rangeHeader string) (*Result, error) {
	parsed, err := url.Parse(originURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	// The manifest timeout bounds the wait for response headers and the
	// manifest read; a passthrough body is bounded only by ctx.
	reqCtx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(p.manifestTimeout(), func() { cancel(context.DeadlineExceeded) })
	defer timer.Stop()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, originURL, nil)
	if err != nil {
		cancel(nil)
		return nil, fmt.Errorf("proxy: build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		if cause := context.Cause(reqCtx); errors.Is(cause, context.DeadlineExceeded) {
			err = cause
		}
		cancel(nil)
		return nil, fmt.Errorf("proxy: fetch origin: %w", err)
	}

	if isManifest(resp.Header.Get("Content-Type"), originURL) {
		defer cancel(nil)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("proxy: read manifest: %w", err)
		}
		rewritten, err := RewriteManifest(string(body), originURL, referer, p.BaseURL)
		if err != nil {
			return nil, err
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = guessContentType(originURL)
		}
		return &Result{
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Manifest:    []byte(rewritten),
		}, nil
	}

	return &Result{
		StatusCode:    resp.StatusCode,
		ContentType:   firstNonEmpty(resp.Header.Get("Content-Type"), guessContentType(originURL)),
		ContentLength: resp.Header.Get("Content-Length"),
		AcceptRanges:  resp.Header.Get("Accept-Ranges"),
		ETag:          resp.Header.Get("ETag"),
		LastModified:  resp.Header.Get("Last-Modified"),
		Body:          resp.Body,
	}, nil
}

func (p *Proxy) manifestTimeout() time.Duration {
	if p.ManifestTimeout <= 0 {
		return 15 * time.Second
	}
	return p.ManifestTimeout
}

// Result is either a rewritten manifest (Manifest non-nil, Body nil) or
// a passthrough segment stream (Body non-nil, Manifest nil).
type Result struct {
	StatusCode    int
	ContentType   string
	ContentLength string
	AcceptRanges  string
	ETag          string
	LastModified  string
	Manifest      []byte
	Body          io.ReadCloser
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// isManifest reports whether a response should be treated as an HLS
// manifest: content-type carries mpegurl, or the URL ends in .m3u/.m3u8
// (spec §4.8).
func isManifest(contentType, originURL string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "mpegurl") || strings.Contains(ct, "x-mpegurl") {
		return true
	}
	lower := strings.ToLower(originURL)
	return strings.HasSuffix(lower, ".m3u") || strings.HasSuffix(lower, ".m3u8")
}

// guessContentType infers a content type from the URL extension when
// the origin omits one, per spec §4.8's table.
func guessContentType(rawURL string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(rawURL, "?", 2)[0]))
	switch ext {
	case ".m3u8", ".m3u":
		return "application/vnd.apple.mpegurl"
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "video/MP2T"
	}
}

// uriAttrFinder finds the first URI="..." attribute on an HLS tag line.
var uriAttrFinder = func(line string) (attr, value string, ok bool) {
	idx := strings.Index(line, `URI="`)
	if idx < 0 {
		return "", "", false
	}
	rest := line[idx+len(`URI="`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return "", "", false
	}
	return line[idx : idx+len(`URI="`)+end+1], rest[:end], true
}

// RewriteManifest rewrites an HLS manifest's lines so every referenced
// URI — tag attribute or data line — routes back through this proxy,
// per spec §4.8's line-by-line rewrite rules.
func RewriteManifest(body, manifestURL, referer, proxyBaseURL string) (string, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return "", fmt.Errorf("proxy: parse manifest url: %w", err)
	}

	var out bytes.Buffer
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")

		switch {
		case trimmed == "":
			out.WriteString(trimmed)
		case strings.HasPrefix(trimmed, "#"):
			if attr, uri, ok := uriAttrFinder(trimmed); ok {
				resolved := resolveURL(base, uri)
				proxied := buildProxyURL(proxyBaseURL, resolved, referer)
				replacement := fmt.Sprintf(`URI="%s"`, proxied)
				out.WriteString(strings.Replace(trimmed, attr, replacement, 1))
			} else {
				out.WriteString(trimmed)
			}
		default:
			resolved := resolveURL(base, trimmed)
			out.WriteString(buildProxyURL(proxyBaseURL, resolved, referer))
		}

		if i != len(lines)-1 {
			out.WriteString("\n")
		}
	}

	return out.String(), nil
}

func resolveURL(base *url.URL, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}

func buildProxyURL(proxyBaseURL, targetURL, referer string) string {
	q := "url=" + url.QueryEscape(targetURL)
	if referer != "" {
		q += "&referer=" + url.QueryEscape(referer)
	}
	return fmt.Sprintf("%s/api/proxy/hls?%s", proxyBaseURL, q)
}

// ParseRangeHeader is a small helper exposed for handlers that need to
// validate a client-supplied Range header shape before forwarding it;
// not required for passthrough (the origin interprets Range itself),
// but used by tests to assert the expected format.
func ParseRangeHeader(h string) (start, end int64, ok bool) {
	if !strings.HasPrefix(h, "bytes=") {
		return 0, 0, false
	}
	parts := strings.SplitN(strings.TrimPrefix(h, "bytes="), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	s, err1 := strconv.ParseInt(parts[0], 10, 64)
	e, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return s, e, true
}
