package internal

import (
	"net/http"
	"strings"
)

// HostSource extracts the host used to select a domain scope.
// Returns the value and true if found, or ("", false) if not present.
type HostSource = func(*http.Request) (string, bool)

// HostExtractor tries multiple sources in order and returns the first match.
type HostExtractor struct {
	sources []HostSource
}

// NewHostExtractor creates a HostExtractor that tries the given sources in
// order. Without sources it reads Request.Host.
func NewHostExtractor(sources ...HostSource) HostExtractor {
	if len(sources) == 0 {
		sources = []HostSource{FromHost()}
	}
	return HostExtractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
func (e HostExtractor) Extract(r *http.Request) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(r); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// FromHost reads Request.Host.
func FromHost() HostSource {
	return func(r *http.Request) (string, bool) {
		return r.Host, r.Host != ""
	}
}

// FromHeader reads a header such as X-Forwarded-Host. Only the first
// comma-separated value is used, which is the one set by the outermost proxy.
// Use it only behind a proxy that overwrites the header.
func FromHeader(name string) HostSource {
	return func(r *http.Request) (string, bool) {
		v := r.Header.Get(name)
		if v == "" {
			return "", false
		}
		first, _, _ := strings.Cut(v, ",")
		first = strings.TrimSpace(first)
		return first, first != ""
	}
}

// FromForwarded reads the host parameter of the first element of an
// RFC 7239 Forwarded header.
func FromForwarded() HostSource {
	return func(r *http.Request) (string, bool) {
		v := r.Header.Get("Forwarded")
		if v == "" {
			return "", false
		}
		first, _, _ := strings.Cut(v, ",")
		for pair := range strings.SplitSeq(first, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || !strings.EqualFold(key, "host") {
				continue
			}
			value = strings.Trim(value, `"`)
			return value, value != ""
		}
		return "", false
	}
}
