package internal

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// TargetKind tells the dispatch layer how to interpret a target value.
type TargetKind string

const (
	KindController TargetKind = "controller"
	KindCallback   TargetKind = "callback"
	KindRedirect   TargetKind = "redirect"
	KindView       TargetKind = "view"
)

// Valid reports whether k is one of the known kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case KindController, KindCallback, KindRedirect, KindView:
		return true
	}
	return false
}

// Target describes what a rule resolves to. The router never interprets
// Value beyond placeholder substitution.
type Target struct {
	Kind  TargetKind `json:"kind"  yaml:"kind"`
	Value string     `json:"value" yaml:"value"`
}

// Controller targets a "module/controller/action" path.
func Controller(action string) Target { return Target{Kind: KindController, Value: action} }

// Callback targets a callable registered with the dispatcher under name.
func Callback(name string) Target { return Target{Kind: KindCallback, Value: name} }

// Redirect targets a literal URL.
func Redirect(url string) Target { return Target{Kind: KindRedirect, Value: url} }

// View targets a template name.
func View(name string) Target { return Target{Kind: KindView, Value: name} }

// ParseTarget parses "kind:value". A string without a known kind prefix
// is a controller target.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	if kind, value, ok := strings.Cut(s, ":"); ok && TargetKind(kind).Valid() {
		if value == "" {
			return Target{}, fmt.Errorf("%w: %q has no value", ErrInvalidTarget, s)
		}
		return Target{Kind: TargetKind(kind), Value: value}, nil
	}
	return Controller(s), nil
}

// Validate checks the kind and that the value is not empty.
func (t Target) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, t.Kind)
	}
	if t.Value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidTarget)
	}
	return nil
}

func (t Target) String() string {
	return string(t.Kind) + ":" + t.Value
}

var placeholderRe = regexp.MustCompile(`/?(?::([A-Za-z_]\w*)|<([A-Za-z_]\w*)>)`)

// Resolve substitutes placeholders for the given params. Placeholders
// naming other params are left untouched.
func (t Target) Resolve(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	return t.Expand(params, names)
}

// Expand substitutes every placeholder whose name is in names. A name
// missing from params is removed along with one preceding "/".
func (t Target) Expand(params map[string]string, names []string) string {
	matches := placeholderRe.FindAllStringSubmatchIndex(t.Value, -1)
	if len(matches) == 0 {
		return t.Value
	}

	var b strings.Builder
	b.Grow(len(t.Value))
	last := 0
	for _, m := range matches {
		name := submatch(t.Value, m, 1)
		if name == "" {
			name = submatch(t.Value, m, 2)
		}
		if !slices.Contains(names, name) {
			continue
		}
		b.WriteString(t.Value[last:m[0]])
		last = m[1]

		value, ok := params[name]
		if !ok {
			continue
		}
		if t.Value[m[0]] == '/' {
			b.WriteByte('/')
		}
		b.WriteString(value)
	}
	b.WriteString(t.Value[last:])
	return b.String()
}

func submatch(s string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

// UnmarshalYAML accepts either the "kind:value" shorthand or a mapping.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseTarget(node.Value)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var raw struct {
		Kind  TargetKind `yaml:"kind"`
		Value string     `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Kind == "" {
		raw.Kind = KindController
	}
	*t = Target{Kind: raw.Kind, Value: raw.Value}
	return t.Validate()
}
