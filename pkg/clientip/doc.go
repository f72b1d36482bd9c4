// Package clientip extracts the client address from HTTP requests.
//
// Headers are checked in order: CF-Connecting-IP, DO-Connecting-IP,
// X-Forwarded-For (leftmost entry), X-Real-IP, then RemoteAddr. Values that
// do not parse as an IP, or are unspecified (0.0.0.0, ::), are skipped.
// IPv4-mapped IPv6 addresses are returned in IPv4 form.
//
//	key := clientip.GetIP(r)
//
// The headers are client controlled unless a proxy rewrites them; deploy
// behind one before using the result for rate limiting.
package clientip
