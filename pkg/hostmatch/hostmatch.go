package hostmatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPattern is returned for malformed domain patterns.
var ErrInvalidPattern = errors.New("hostmatch: invalid domain pattern")

// Pattern is a normalized domain scope pattern.
type Pattern struct {
	// Raw is the pattern as written by the caller.
	Raw string
	// Host is the exact host, or the parent domain for wildcards.
	Host     string
	Wildcard bool
}

// Parse normalizes a domain pattern. Bare labels are expanded under root,
// including the parent of a wildcard ("*.api" covers "*.api.<root>").
func Parse(pattern, root string) (Pattern, error) {
	raw := pattern
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	if rest, ok := strings.CutPrefix(p, "*."); ok {
		if rest == "" || strings.Contains(rest, "*") {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		}
		return Pattern{Raw: raw, Host: expand(Normalize(rest), root), Wildcard: true}, nil
	}
	if strings.Contains(p, "*") {
		return Pattern{}, fmt.Errorf("%w: wildcard must be the leftmost label: %q", ErrInvalidPattern, raw)
	}

	return Pattern{Raw: raw, Host: expand(Normalize(p), root)}, nil
}

func expand(host, root string) string {
	if root = Normalize(root); root != "" && !strings.Contains(host, ".") && !strings.HasPrefix(host, "[") {
		return host + "." + root
	}
	return host
}

// Match reports whether the normalized host falls under the pattern.
func (p Pattern) Match(host string) bool {
	if !p.Wildcard {
		return host == p.Host
	}
	return strings.HasSuffix(host, "."+p.Host)
}

func (p Pattern) String() string {
	if p.Wildcard {
		return "*." + p.Host
	}
	return p.Host
}

// Set is an ordered collection of patterns.
// It is built once and then only read, so lookups need no locking.
type Set struct {
	exact    map[string]int // "api.example.com" -> index
	wildcard map[string]int // "example.com" -> index (for *.example.com)
	root     string
	patterns []Pattern
}

// NewSet creates an empty pattern set. root is used to expand bare labels.
func NewSet(root string) *Set {
	return &Set{
		exact:    make(map[string]int),
		wildcard: make(map[string]int),
		root:     Normalize(root),
	}
}

// Add appends a pattern and returns its index. Adding a pattern equivalent
// to one already present returns the existing index.
func (s *Set) Add(pattern string) (int, error) {
	p, err := Parse(pattern, s.root)
	if err != nil {
		return -1, err
	}

	index := s.exact
	if p.Wildcard {
		index = s.wildcard
	}
	if i, ok := index[p.Host]; ok {
		return i, nil
	}

	i := len(s.patterns)
	s.patterns = append(s.patterns, p)
	index[p.Host] = i
	return i, nil
}

// Lookup returns the index of the pattern that owns host.
// Exact patterns are checked first, then wildcards from the most specific
// parent domain to the least specific.
func (s *Set) Lookup(host string) (int, bool) {
	host = Normalize(host)
	if host == "" {
		return -1, false
	}

	if i, ok := s.exact[host]; ok {
		return i, true
	}

	parent := host
	for {
		_, rest, ok := strings.Cut(parent, ".")
		if !ok || rest == "" {
			return -1, false
		}
		if i, ok := s.wildcard[rest]; ok {
			return i, true
		}
		parent = rest
	}
}

// Pattern returns the pattern at index i.
func (s *Set) Pattern(i int) Pattern { return s.patterns[i] }

// Len returns the number of distinct patterns.
func (s *Set) Len() int { return len(s.patterns) }

// Root returns the normalized root domain.
func (s *Set) Root() string { return s.root }
