package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
)

const maxUserAgentLen = 256

// IPConfig decides which peers may vouch for a client address through
// X-Forwarded-For / X-Real-IP
type IPConfig struct {
	trusted []*net.IPNet
}

// NewIPConfig parses the trusted proxy CIDR ranges
func NewIPConfig(trustedProxies []string) (*IPConfig, error) {
	cfg := &IPConfig{}
	for _, cidr := range trustedProxies {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		cfg.trusted = append(cfg.trusted, ipNet)
	}
	return cfg, nil
}

// ClientIP returns the address used for audit logging. Forwarding headers
// are honoured only when the direct peer is a trusted proxy; otherwise a
// client could claim any address it likes.
func ClientIP(r *http.Request, cfg *IPConfig) string {
	remoteIP := remoteAddr(r)

	if cfg == nil || !cfg.trusts(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	return remoteIP
}

type forwardedTLSKey struct{}

// WithForwardedTLS marks r as having reached a trusted proxy over TLS
func WithForwardedTLS(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), forwardedTLSKey{}, true))
}

// IsSecure reports whether r arrived over TLS, either directly or through a
// trusted proxy marked by WithForwardedTLS. X-Forwarded-Proto on its own is
// never believed.
func IsSecure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	forwarded, _ := r.Context().Value(forwardedTLSKey{}).(bool)
	return forwarded
}

// ForwardedTLS reports whether a trusted proxy said the client used https
func ForwardedTLS(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

// TrustsPeer reports whether the direct peer of r is a trusted proxy
func (c *IPConfig) TrustsPeer(r *http.Request) bool {
	return c != nil && c.trusts(remoteAddr(r))
}

// UserAgent returns the request's User-Agent truncated for log storage
func UserAgent(r *http.Request) string {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLen {
		return ua[:maxUserAgentLen]
	}
	return ua
}

func (c *IPConfig) trusts(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range c.trusted {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
