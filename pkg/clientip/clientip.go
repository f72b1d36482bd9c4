package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Headers are checked in this order before falling back to RemoteAddr.
var Headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the client address for r. It trusts proxy headers, so only
// use it behind a proxy that overwrites them. If nothing parses, the raw
// RemoteAddr is returned.
func GetIP(r *http.Request) string {
	for _, h := range Headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For is "client, proxy1, proxy2".
		if first, _, found := strings.Cut(v, ","); found {
			v = first
		}
		if ip, ok := parse(v); ok {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := parse(host); ok {
		return ip
	}
	return r.RemoteAddr
}

func parse(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || addr.IsUnspecified() {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
