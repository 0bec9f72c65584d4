// Package metadata captures the client address and User-Agent of each request.
package metadata

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"donorprofile/pkg/requestcontext"
)

// TrustedProxies lists the networks whose forwarding headers are believed.
// The zero value trusts nobody, so the connection address is always used.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts bare addresses ("10.0.0.1") and CIDRs ("10.0.0.0/8").
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (t TrustedProxies) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientMetadata stores the client IP and User-Agent in the request context.
// Apply it early in the chain; rate limiting and captcha checks read the IP.
func ClientMetadata(trusted TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r, trusted), r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest returns the originating client IP. X-Forwarded-For and
// X-Real-IP are only read when the connection comes from a trusted proxy; the
// forwarded chain is then walked from the right and the first hop that is not
// itself a trusted proxy wins.
func ClientIPFromRequest(r *http.Request, trusted TrustedProxies) string {
	remote := remoteHost(r)
	if !trusted.contains(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !trusted.contains(hop) {
				return hop
			}
		}
		if first := strings.TrimSpace(hops[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

func remoteHost(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
