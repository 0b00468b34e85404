package hostmatch

import (
	"net/http"
	"strings"

	"golang.org/x/net/idna"
)

// FromRequest returns the normalized host of the request.
func FromRequest(r *http.Request) string {
	return Normalize(r.Host)
}

// Normalize strips the port, lowercases the host and converts
// internationalized names to their ASCII form.
//
// Examples:
//
//	"example.com:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
//	"Example.COM"      -> "example.com"
//	"bücher.example"   -> "xn--bcher-kva.example"
func Normalize(host string) string {
	host = strings.TrimSpace(host)

	// Strip port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		// Check it's not an IPv6 address
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	host = strings.TrimSuffix(host, ".")

	if isASCII(host) {
		return strings.ToLower(host)
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}

// Subdomain extracts the subdomain of host relative to base.
// Returns empty string if host doesn't match base or has no subdomain.
//
// Examples:
//
//	Subdomain("foo.example.com", "example.com")     // "foo"
//	Subdomain("bar.foo.example.com", "example.com") // "bar.foo"
//	Subdomain("example.com", "example.com")         // ""
//	Subdomain("other.com", "example.com")           // ""
func Subdomain(host, base string) string {
	host = Normalize(host)
	base = Normalize(base)
	if host == "" || base == "" || host == base {
		return ""
	}

	sub, ok := strings.CutSuffix(host, "."+base)
	if !ok {
		return ""
	}
	return sub
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
