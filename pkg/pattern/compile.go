package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultFragment is the constraint used for parameters without one.
const DefaultFragment = `[\w]+`

// Expression is a compiled route template.
// It is immutable and safe for concurrent use.
type Expression struct {
	re         *regexp.Regexp
	validators map[string]*regexp.Regexp
	template   string
	source     string
	params     []string
	groups     []int
	segments   []Segment
}

// Compile converts a template into an anchored regular expression.
// Constraints map parameter names to regex fragments; entries for names that
// do not appear in the template are ignored.
func Compile(template string, constraints map[string]string) (*Expression, error) {
	segs, err := Parse(template)
	if err != nil {
		return nil, err
	}

	e := &Expression{
		template:   template,
		segments:   segs,
		validators: make(map[string]*regexp.Regexp),
	}

	var b strings.Builder
	b.WriteByte('^')

	open := 0
	for i, seg := range segs {
		if seg.Optional {
			b.WriteString("(?:")
			open++
		}
		if i > 0 {
			b.WriteByte('/')
		}

		if seg.Kind == Literal {
			b.WriteString(regexp.QuoteMeta(seg.Value))
			continue
		}

		frag := DefaultFragment
		if c, ok := constraints[seg.Value]; ok {
			frag = c
		}
		v, err := compileFragment(frag)
		if err != nil {
			return nil, templateErr(template, seg.Value, fmt.Errorf("%w: %q: %v", ErrInvalidConstraint, frag, err))
		}
		e.validators[seg.Value] = v
		e.params = append(e.params, seg.Value)

		fmt.Fprintf(&b, "(?P<%s>%s)", seg.Value, frag)
	}

	for range open {
		b.WriteString(")?")
	}
	b.WriteByte('$')

	e.source = b.String()
	e.re, err = regexp.Compile(e.source)
	if err != nil {
		return nil, templateErr(template, "", fmt.Errorf("%w: %v", ErrInvalidConstraint, err))
	}

	e.groups = make([]int, len(e.params))
	for i, name := range e.params {
		e.groups[i] = e.re.SubexpIndex(name)
	}

	return e, nil
}

// compileFragment compiles a constraint on its own, anchored, so a broken
// fragment is reported against its parameter rather than the whole template.
func compileFragment(frag string) (*regexp.Regexp, error) {
	if frag == "" {
		return nil, errors.New("empty fragment")
	}
	return regexp.Compile("^(?:" + frag + ")$")
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, constraints map[string]string) *Expression {
	e, err := Compile(template, constraints)
	if err != nil {
		panic(err)
	}
	return e
}

// Match reports whether path matches the expression and returns the
// parameters that participated in the match. Optional parameters that were
// not present are absent from the map.
func (e *Expression) Match(path string) (map[string]string, bool) {
	loc := e.re.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, false
	}

	params := make(map[string]string, len(e.params))
	for i, name := range e.params {
		g := e.groups[i]
		if loc[2*g] < 0 {
			continue
		}
		params[name] = path[loc[2*g]:loc[2*g+1]]
	}
	return params, true
}

// Build reverse-builds a path from params.
// Required parameters must be present; optional parameters are emitted as
// the longest present prefix of the optional run, and a gap in that run is
// reported as ErrMissingParam.
func (e *Expression) Build(params map[string]string) (string, error) {
	// Last optional segment that has to be emitted.
	last := -1
	for i, seg := range e.segments {
		if seg.Optional && seg.Kind == Param && params[seg.Value] != "" {
			last = i
		}
	}

	parts := make([]string, 0, len(e.segments))
	for i, seg := range e.segments {
		if seg.Optional && i > last {
			break
		}
		if seg.Kind == Literal {
			parts = append(parts, seg.Value)
			continue
		}

		v := params[seg.Value]
		if v == "" {
			return "", fmt.Errorf("%w: %q for template %q", ErrMissingParam, seg.Value, e.template)
		}
		if !e.validators[seg.Value].MatchString(v) {
			return "", fmt.Errorf("%w: %q=%q for template %q", ErrParamMismatch, seg.Value, v, e.template)
		}
		parts = append(parts, v)
	}

	return strings.Join(parts, "/"), nil
}

// String returns the anchored expression source.
func (e *Expression) String() string { return e.source }

// Template returns the template the expression was compiled from.
func (e *Expression) Template() string { return e.template }

// Params returns parameter names in template order.
func (e *Expression) Params() []string {
	out := make([]string, len(e.params))
	copy(out, e.params)
	return out
}

// Segments returns the parsed template segments.
func (e *Expression) Segments() []Segment {
	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}

// Regexp returns the compiled expression.
func (e *Expression) Regexp() *regexp.Regexp { return e.re }
