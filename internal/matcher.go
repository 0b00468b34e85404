package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/pathway/pkg/hostmatch"
)

// Request is the input to a match.
type Request struct {
	Method string
	Path   string
	Host   string
}

// RequestFromHTTP extracts the match input from an http.Request.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Host:   hostmatch.FromRequest(r),
	}
}

func (r Request) normalize() Request {
	return Request{
		Method: strings.ToUpper(strings.TrimSpace(r.Method)),
		Path:   strings.TrimPrefix(r.Path, "/"),
		Host:   hostmatch.Normalize(r.Host),
	}
}

// Matcher is the immutable result of Router.Build.
// It is safe for concurrent use.
type Matcher struct {
	hosts  *hostmatch.Set
	scoped [][]*Rule
	global []*Rule
	rules  []*Rule
	named  map[string]*Rule
	logger *slog.Logger
}

func newMatcher(rules []*Rule, root string, log *slog.Logger) (*Matcher, error) {
	m := &Matcher{
		hosts:  hostmatch.NewSet(root),
		rules:  append([]*Rule(nil), rules...),
		named:  make(map[string]*Rule),
		logger: log,
	}

	var errs []error
	for _, rule := range m.rules {
		if rule.name != "" {
			if prev, ok := m.named[rule.name]; ok {
				errs = append(errs, fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateName, rule.name, prev, rule))
			} else {
				m.named[rule.name] = rule
			}
		}

		if rule.domain == "" {
			m.global = append(m.global, rule)
			continue
		}
		i, err := m.hosts.Add(rule.domain)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidDomain, rule, err))
			continue
		}
		if i == len(m.scoped) {
			m.scoped = append(m.scoped, nil)
		}
		m.scoped[i] = append(m.scoped[i], rule)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// partition selects the rules evaluated for host: the owning domain scope
// when one matches, otherwise the rules registered without a domain.
func (m *Matcher) partition(host string) []*Rule {
	if host != "" && m.hosts.Len() > 0 {
		if i, ok := m.hosts.Lookup(host); ok {
			return m.scoped[i]
		}
	}
	return m.global
}

// Check evaluates req against the applicable partition in registration
// order and returns the first rule whose path and method both match.
func (m *Matcher) Check(req Request) MatchResult {
	req = req.normalize()

	pathMatched := false
	for _, rule := range m.partition(req.Host) {
		res := rule.Check(req.Path)
		if !res.Matched {
			continue
		}
		if !rule.method.Allows(req.Method) {
			pathMatched = true
			continue
		}
		return res
	}
	return MatchResult{MethodMismatch: pathMatched}
}

// Allowed returns the union of methods of the rules whose path matches
// req in the applicable partition. The request method is ignored.
func (m *Matcher) Allowed(req Request) Method {
	req = req.normalize()

	var allowed Method
	for _, rule := range m.partition(req.Host) {
		if rule.Check(req.Path).Matched {
			allowed |= rule.method
		}
	}
	return allowed
}

// Resolve is Check followed by target resolution. Misses are reported as
// ErrNotFound or ErrMethodNotAllowed.
func (m *Matcher) Resolve(req Request) (Resolution, error) {
	res := m.Check(req)
	if res.Matched {
		resolution, _ := res.Resolution()
		return resolution, nil
	}
	if res.MethodMismatch {
		return Resolution{}, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, req.Method, req.Path)
	}
	return Resolution{}, fmt.Errorf("%w: %s %s", ErrNotFound, req.Method, req.Path)
}

// URL builds the path for the rule registered under name.
func (m *Matcher) URL(name string, params map[string]string) (string, error) {
	rule, ok := m.named[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return rule.URL(params)
}

// Lookup returns the rule registered under name.
func (m *Matcher) Lookup(name string) (*Rule, bool) {
	rule, ok := m.named[name]
	return rule, ok
}

// Rules returns all rules in registration order.
func (m *Matcher) Rules() []*Rule {
	return append([]*Rule(nil), m.rules...)
}

// Domains returns the distinct domain patterns in first-registration order.
func (m *Matcher) Domains() []string {
	out := make([]string, m.hosts.Len())
	for i := range out {
		out[i] = m.hosts.Pattern(i).String()
	}
	return out
}

// Logger returns the logger the matcher was built with.
func (m *Matcher) Logger() *slog.Logger { return m.logger }
