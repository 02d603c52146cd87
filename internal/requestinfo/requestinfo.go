//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client metadata attached to each login attempt: client IP,
//  device class, browser, OS, bot flag, and country.  Info is inert and safe
//  to log or store.
//
//  Dependencies
//  • github.com/avct/uasurfer           (UA parsing)
//  • github.com/oschwald/geoip2-golang  (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// Info describes the client behind one request.
type Info struct {
	IP      net.IP
	Device  string // "Phone", "Tablet", "Computer", ...
	Browser string // "Chrome", "Safari", ...
	OS      string // "iOS", "Android", ...
	IsBot   bool
	Country string // ISO code, empty when unknown
}

// Resolver builds Info values.  The GeoIP reader is optional and safe for
// concurrent reads.  Forwarding headers are honoured only when the direct
// peer falls inside trusted.
type Resolver struct {
	geo     *geoip2.Reader
	trusted []*net.IPNet
}

// NewResolver opens the GeoLite2 database at geoPath.  An empty path yields a
// Resolver without country lookup.  trustedProxies holds CIDRs or bare IPs of
// reverse proxies whose X-Forwarded-For and X-Real-Ip headers are believed.
func NewResolver(geoPath string, trustedProxies []string) (*Resolver, error) {
	trusted, err := parseProxies(trustedProxies)
	if err != nil {
		return nil, err
	}
	if geoPath == "" {
		return &Resolver{trusted: trusted}, nil
	}
	r, err := geoip2.Open(geoPath)
	if err != nil {
		return nil, err
	}
	return &Resolver{geo: r, trusted: trusted}, nil
}

func parseProxies(in []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if !strings.Contains(s, "/") {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: not an IP or CIDR", s)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *Resolver) isTrusted(ip net.IP) bool {
	for _, n := range r.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Close releases the GeoIP reader.
func (r *Resolver) Close() error {
	if r.geo == nil {
		return nil
	}
	return r.geo.Close()
}

// Resolve parses the User-Agent header and looks up ip.
func (r *Resolver) Resolve(ip net.IP, userAgent string) *Info {
	u := uasurfer.Parse(userAgent)
	info := &Info{
		IP:      ip,
		Device:  strings.TrimPrefix(u.DeviceType.String(), "Device"),
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}
	if r.geo != nil && ip != nil {
		if rec, err := r.geo.Country(ip); err == nil {
			info.Country = rec.Country.IsoCode
		}
	}
	return info
}

type ctxKey struct{}

// WithInfo returns a copy of ctx carrying info.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the Info stored by the middleware, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}
