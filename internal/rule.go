package internal

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/pathway/pkg/pattern"
)

// Rule binds a route template to a method set and a target.
//
// Constraints and the name are configured before the first compilation.
// Changing them afterwards panics with ErrRuleCompiled.
type Rule struct {
	once     sync.Once
	compiled atomic.Bool
	expr     *pattern.Expression
	err      error

	constraints map[string]string
	target      Target
	template    string
	domain      string
	name        string
	method      Method
}

// NewRule creates a rule without a domain.
func NewRule(method Method, template string, target Target) *Rule {
	return &Rule{
		method:      method,
		template:    template,
		target:      target,
		constraints: make(map[string]string),
	}
}

// Pattern sets the regex fragment for one parameter.
func (r *Rule) Pattern(name, fragment string) *Rule {
	r.mustBeMutable()
	r.constraints[name] = fragment
	return r
}

// Patterns sets several parameter fragments at once.
func (r *Rule) Patterns(constraints map[string]string) *Rule {
	r.mustBeMutable()
	maps.Copy(r.constraints, constraints)
	return r
}

// As names the rule for reverse routing.
func (r *Rule) As(name string) *Rule {
	r.mustBeMutable()
	r.name = name
	return r
}

func (r *Rule) mustBeMutable() {
	if r.compiled.Load() {
		panic(fmt.Errorf("%w: %s %s", ErrRuleCompiled, r.method, r.template))
	}
}

// inherit fills constraints the rule does not set itself.
func (r *Rule) inherit(global map[string]string) {
	for name, frag := range global {
		if _, ok := r.constraints[name]; !ok {
			r.constraints[name] = frag
		}
	}
}

// Compile builds the expression once. Later calls return the memoised
// result, including a configuration error.
func (r *Rule) Compile() (*pattern.Expression, error) {
	r.once.Do(func() {
		r.compiled.Store(true)
		r.expr, r.err = pattern.Compile(r.template, r.constraints)
	})
	return r.expr, r.err
}

// Check matches path against the rule's expression, ignoring the method.
// A rule that fails to compile never matches; Router.Build reports it.
func (r *Rule) Check(path string) MatchResult {
	expr, err := r.Compile()
	if err != nil {
		return MatchResult{}
	}
	params, ok := expr.Match(path)
	if !ok {
		return MatchResult{}
	}
	return MatchResult{Matched: true, Rule: r, Params: params}
}

// Resolve returns the rule's target with placeholders replaced by params.
func (r *Rule) Resolve(params map[string]string) Resolution {
	var names []string
	if expr, err := r.Compile(); err == nil {
		names = expr.Params()
	}
	return Resolution{
		Kind:   r.target.Kind,
		Action: r.target.Expand(params, names),
		Params: params,
	}
}

// URL builds a path for the rule from params. The result starts with "/".
func (r *Rule) URL(params map[string]string) (string, error) {
	expr, err := r.Compile()
	if err != nil {
		return "", err
	}
	path, err := expr.Build(params)
	if err != nil {
		return "", fmt.Errorf("rule %q: %w", r.template, err)
	}
	return "/" + path, nil
}

func (r *Rule) Template() string { return r.template }
func (r *Rule) Method() Method   { return r.method }
func (r *Rule) Target() Target   { return r.target }
func (r *Rule) Domain() string   { return r.domain }
func (r *Rule) Name() string     { return r.name }

// Constraints returns a copy of the effective constraint map.
func (r *Rule) Constraints() map[string]string {
	return maps.Clone(r.constraints)
}

// Definition exports the rule as plain data.
func (r *Rule) Definition() Definition {
	d := Definition{
		Name:     r.name,
		Method:   r.method.String(),
		Template: r.template,
		Target:   r.target,
		Domain:   r.domain,
	}
	if len(r.constraints) > 0 {
		d.Constraints = maps.Clone(r.constraints)
	}
	return d
}

func (r *Rule) String() string {
	s := r.method.String() + " " + r.template
	if r.domain != "" {
		s += " @" + r.domain
	}
	return s
}

// MatchResult is produced per evaluation. Absent optional params are
// absent keys in Params.
type MatchResult struct {
	Rule   *Rule
	Params map[string]string
	// Matched is false for a miss. A miss is not an error.
	Matched bool
	// MethodMismatch is set when some rule matched the path but none
	// accepted the method.
	MethodMismatch bool
}

// Resolution returns the dispatch triple for a matched result.
func (m MatchResult) Resolution() (Resolution, bool) {
	if !m.Matched || m.Rule == nil {
		return Resolution{}, false
	}
	return m.Rule.Resolve(m.Params), true
}

// Resolution is what the dispatch layer consumes.
type Resolution struct {
	Params map[string]string `json:"params"`
	Kind   TargetKind        `json:"kind"`
	Action string            `json:"action"`
}
