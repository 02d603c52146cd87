// internal/requestinfo/middleware.go
//
// HTTP middleware that attaches *Info to each request context.

package requestinfo

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware resolves Info for every request and forwards.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		info := r.Resolve(r.clientIP(req), req.UserAgent())

		zap.S().Debugw("request info",
			"ip", info.IP,
			"country", info.Country,
			"device", info.Device,
			"browser", info.Browser,
			"bot", info.IsBot,
			"path", req.URL.Path,
		)

		next.ServeHTTP(w, req.WithContext(WithInfo(req.Context(), info)))
	})
}

// clientIP returns the direct peer unless it is a trusted proxy.  Behind a
// trusted proxy it walks X-Forwarded-For from the right and returns the first
// hop that is not itself trusted, falling back to X-Real-Ip and then the peer.
func (r *Resolver) clientIP(req *http.Request) net.IP {
	var peer net.IP
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		peer = net.ParseIP(host)
	}
	if peer == nil || !r.isTrusted(peer) {
		return peer
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !r.isTrusted(ip) {
				return ip
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(req.Header.Get("X-Real-Ip"))); ip != nil {
		return ip
	}
	return peer
}
