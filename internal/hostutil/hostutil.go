// Package hostutil classifies request hosts as local, canonical or foreign.
package hostutil

import (
	"net"
	"strings"
)

// Hostname strips any port and trailing dot and lowercases host.
func Hostname(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// IsLocal reports whether host points at a loopback, unspecified or private
// address, or at a development-only name such as localhost.
func IsLocal(host string) bool {
	name := Hostname(host)
	if name == "" {
		return true
	}
	if name == "localhost" || strings.HasSuffix(name, ".localhost") || strings.HasSuffix(name, ".local") {
		return true
	}
	if ip := net.ParseIP(name); ip != nil {
		return ip.IsLoopback() || ip.IsUnspecified() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}
	return false
}

// IsCanonical reports whether host matches canonical, ignoring port and case.
// An empty canonical host matches everything.
func IsCanonical(host, canonical string) bool {
	canonical = Hostname(canonical)
	if canonical == "" {
		return true
	}
	return Hostname(host) == canonical
}

// IsDevelopment reports whether a request for host should be treated as
// coming from a development deployment: a local host, or any host other than
// the configured canonical one.
func IsDevelopment(host, canonical string) bool {
	return IsLocal(host) || !IsCanonical(host, canonical)
}
