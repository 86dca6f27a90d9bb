package services

import (
	"net"
	"net/url"
	"strings"
)

// Hosting domains where no backend runs next to the client.
var restrictedHostMarkers = []string{".fly.dev", ".netlify.app", ".vercel.app", "builder.io"}

// IsRestrictedHost reports whether a client served from host must skip the
// backend and verify against the built-in accounts only. Anything that is
// not a local development host counts as restricted.
func IsRestrictedHost(host string) bool {
	for _, m := range restrictedHostMarkers {
		if strings.Contains(host, m) {
			return true
		}
	}
	if strings.Contains(host, "localhost") {
		return false
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip == nil || !ip.IsLoopback()
}

// IsRestrictedEndpoint applies IsRestrictedHost to the host of a base URL.
// An unparseable URL is restricted.
func IsRestrictedEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return true
	}
	return IsRestrictedHost(u.Hostname())
}
