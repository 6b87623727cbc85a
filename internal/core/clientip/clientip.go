// Package clientip resolves the originating client address for admission control
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the sentinel address when no peer information is available
const Unknown = "unknown"

// FromRequest extracts the client address from r.
//
// With trustProxy set, X-Forwarded-For is scanned left to right and the
// first entry that parses as a public IP wins. Forwarded chains routinely
// start with private addresses when the client sits behind its own NAT or
// a sidecar, so private/loopback/link-local entries are skipped. If no
// entry qualifies the first one is returned verbatim. Without the header,
// or with trustProxy off, the transport peer address is used.
func FromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := FromForwarded(xff); ip != "" {
				return ip
			}
		}
	}
	return peer(r)
}

// FromForwarded picks the client address out of a comma-separated
// forwarded chain. Empty string means the chain had no usable entry.
func FromForwarded(chain string) string {
	parts := strings.Split(chain, ",")
	entries := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			entries = append(entries, v)
		}
	}
	for _, e := range entries {
		ip := net.ParseIP(e)
		if ip == nil {
			continue
		}
		if !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() && !ip.IsLinkLocalMulticast() {
			return e
		}
	}
	if len(entries) > 0 {
		return entries[0]
	}
	return ""
}

func peer(r *http.Request) string {
	if r.RemoteAddr == "" {
		return Unknown
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (tests, unix sockets)
		return r.RemoteAddr
	}
	return host
}
