// Package netguard provides a dial guard that blocks outbound
// connections to private, loopback, and link-local addresses.
//
// Playlist URLs and Xtream panel addresses are supplied by whoever
// submits a parse request; fetching them naively would let that request
// pivot into internal infrastructure (the classic SSRF shape). Adapted
// from the pack's submarine-mode allowlist dialer
// (net/dialer.go/SubmarineDialContext), inverted from an
// allowlist-of-domains to a denylist-of-address-ranges: the parse and
// HLS-proxy fetch paths need to reach arbitrary public hosts, just never
// the ones behind them.
package netguard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DialContext is a net.Dialer.DialContext replacement that resolves
// addr and rejects the connection if any resolved IP is private,
// loopback, link-local, or unspecified.
func DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	if ip := net.ParseIP(host); ip != nil {
		if blocked(ip) {
			return nil, fmt.Errorf("netguard: connection to %s blocked (private/internal address)", addr)
		}
	} else {
		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		for _, resolved := range ips {
			if blocked(resolved.IP) {
				return nil, fmt.Errorf("netguard: connection to %s blocked (resolves to private/internal address)", addr)
			}
		}
	}

	var d net.Dialer
	return d.DialContext(ctx, network, net.JoinHostPort(host, port))
}

// blocked reports whether ip must never be dialed from a request that
// originates with user-supplied input.
func blocked(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

// NewHTTPClient returns an *http.Client whose transport dials through
// DialContext, with the given overall request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: DialContext,
		},
	}
}
