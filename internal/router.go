package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Router collects rules in registration order. It is a single-writer
// builder used at bootstrap; Build turns it into an immutable Matcher and
// locks it against further registration.
type Router struct {
	state  *routerState
	domain string
	prefix string
}

type routerState struct {
	opts     *routerOptions
	patterns map[string]string
	rules    []*Rule
	locked   bool
}

// NewRouter creates an empty router.
func NewRouter(opts ...RouterOption) *Router {
	o := defaultRouterOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Router{state: &routerState{
		opts:     o,
		patterns: maps.Clone(o.patterns),
	}}
}

// Add registers a rule. The template is joined to the current group prefix
// and the rule joins the current domain scope.
func (r *Router) Add(method Method, template string, target Target) *Rule {
	rule := NewRule(method, joinTemplate(r.prefix, template), target)
	rule.domain = r.domain
	rule.inherit(r.state.patterns)
	r.push(rule)
	return rule
}

func (r *Router) Get(template string, target Target) *Rule {
	return r.Add(MethodGet, template, target)
}

func (r *Router) Post(template string, target Target) *Rule {
	return r.Add(MethodPost, template, target)
}

func (r *Router) Put(template string, target Target) *Rule {
	return r.Add(MethodPut, template, target)
}

func (r *Router) Delete(template string, target Target) *Rule {
	return r.Add(MethodDelete, template, target)
}

func (r *Router) Patch(template string, target Target) *Rule {
	return r.Add(MethodPatch, template, target)
}

func (r *Router) Head(template string, target Target) *Rule {
	return r.Add(MethodHead, template, target)
}

func (r *Router) Options(template string, target Target) *Rule {
	return r.Add(MethodOptions, template, target)
}

func (r *Router) Any(template string, target Target) *Rule {
	return r.Add(MethodAny, template, target)
}

// AddRule registers a prebuilt rule as is. Its template is not prefixed;
// it joins the current domain scope only when it has no domain of its own.
func (r *Router) AddRule(rule *Rule) *Rule {
	if rule.domain == "" {
		rule.domain = r.domain
	}
	if !rule.compiled.Load() {
		rule.inherit(r.state.patterns)
	}
	r.push(rule)
	return rule
}

// Domain runs fn with a router whose registrations are scoped to host.
// See pkg/hostmatch for the accepted host patterns.
func (r *Router) Domain(host string, fn func(*Router)) {
	fn(&Router{state: r.state, domain: host, prefix: r.prefix})
}

// DomainRules registers a batch of prebuilt rules under host.
func (r *Router) DomainRules(host string, rules ...*Rule) {
	for _, rule := range rules {
		rule.domain = host
		r.AddRule(rule)
	}
}

// Group runs fn with a router that prefixes every template with prefix.
func (r *Router) Group(prefix string, fn func(*Router)) {
	fn(&Router{state: r.state, domain: r.domain, prefix: joinTemplate(r.prefix, prefix)})
}

// Pattern sets a router-wide fragment for a parameter name. It applies to
// rules registered after the call.
func (r *Router) Pattern(name, fragment string) *Router {
	r.mustBeOpen()
	r.state.patterns[name] = fragment
	return r
}

// Register replays definitions in order, as exported by ToArray or stored
// in a cache. Definitions carry their effective constraints, so router-wide
// patterns are not applied.
func (r *Router) Register(defs ...Definition) error {
	var errs []error
	for i, def := range defs {
		rule, err := def.Rule()
		if err != nil {
			errs = append(errs, fmt.Errorf("definition %d: %w", i, err))
			continue
		}
		r.push(rule)
	}
	return errors.Join(errs...)
}

func (r *Router) push(rule *Rule) {
	r.mustBeOpen()
	r.state.rules = append(r.state.rules, rule)
}

func (r *Router) mustBeOpen() {
	if r.state.locked {
		panic(ErrRouterLocked)
	}
}

// Rules returns the registered rules in registration order.
func (r *Router) Rules() []*Rule {
	out := make([]*Rule, len(r.state.rules))
	copy(out, r.state.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Router) Len() int { return len(r.state.rules) }

// Locked reports whether Build has been called.
func (r *Router) Locked() bool { return r.state.locked }

// RootDomain returns the configured root domain.
func (r *Router) RootDomain() string { return r.state.opts.rootDomain }

// ToArray exports every rule as plain data in registration order.
// Passing the result to Register on a fresh router reproduces it.
func (r *Router) ToArray() []Definition {
	out := make([]Definition, len(r.state.rules))
	for i, rule := range r.state.rules {
		out[i] = rule.Definition()
	}
	return out
}

// Build compiles every rule, locks the router, and returns a matcher.
// All configuration errors are reported together.
func (r *Router) Build() (*Matcher, error) {
	r.state.locked = true
	log := r.state.opts.logger

	var errs []error
	for i, rule := range r.state.rules {
		if rule.method == 0 {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w: no methods", i, rule, ErrInvalidMethod))
		}
		if err := rule.target.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, rule, err))
		}
		if _, err := rule.Compile(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, rule, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	m, err := newMatcher(r.state.rules, r.state.opts.rootDomain, log)
	if err != nil {
		return nil, err
	}

	log.Debug("routes compiled",
		slog.Int("rules", len(r.state.rules)),
		slog.Int("domains", m.hosts.Len()),
	)
	return m, nil
}

// MustBuild is like Build but panics on error.
func (r *Router) MustBuild() *Matcher {
	m, err := r.Build()
	if err != nil {
		panic(err)
	}
	return m
}

func joinTemplate(prefix, template string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return template
	}
	template = strings.TrimPrefix(template, "/")
	if template == "" {
		return prefix
	}
	return prefix + "/" + template
}
