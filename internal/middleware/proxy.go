package middleware

import (
	"net/http"

	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// forwardingHeaders are dropped from requests that did not come through a
// trusted proxy so nothing downstream can be fooled by them
var forwardingHeaders = []string{
	"X-Forwarded-For",
	"X-Forwarded-Proto",
	"X-Real-IP",
	"True-Client-IP",
}

// TrustedProxies replaces chi's RealIP. When the direct peer is one of the
// configured proxies, RemoteAddr is rewritten to the forwarded client address
// and X-Forwarded-Proto: https marks the request as secure. Any other peer
// has its forwarding headers stripped.
func TrustedProxies(cfg *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.TrustsPeer(r) {
				for _, h := range forwardingHeaders {
					r.Header.Del(h)
				}
				next.ServeHTTP(w, r)
				return
			}

			secure := pkghttp.ForwardedTLS(r)
			r.RemoteAddr = pkghttp.ClientIP(r, cfg)
			if secure {
				r = pkghttp.WithForwardedTLS(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
