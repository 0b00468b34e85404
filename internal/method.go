package internal

import (
	"fmt"
	"strings"
)

// Method is a set of HTTP methods a rule accepts.
type Method uint8

const (
	MethodGet Method = 1 << iota
	MethodPost
	MethodPut
	MethodDelete
	MethodPatch
	MethodHead
	MethodOptions

	MethodAny = MethodGet | MethodPost | MethodPut | MethodDelete | MethodPatch | MethodHead | MethodOptions
)

var methodNames = []struct {
	name string
	m    Method
}{
	{"GET", MethodGet},
	{"POST", MethodPost},
	{"PUT", MethodPut},
	{"DELETE", MethodDelete},
	{"PATCH", MethodPatch},
	{"HEAD", MethodHead},
	{"OPTIONS", MethodOptions},
}

// ParseMethod parses a method name. Names are case-insensitive; "*" and ""
// mean ANY and several names may be joined with "|".
func ParseMethod(s string) (Method, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" || strings.EqualFold(s, "ANY") {
		return MethodAny, nil
	}

	var out Method
	for part := range strings.SplitSeq(s, "|") {
		m, ok := lookupMethod(strings.TrimSpace(part))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, part)
		}
		out |= m
	}
	return out, nil
}

func lookupMethod(name string) (Method, bool) {
	if strings.EqualFold(name, "ANY") || name == "*" {
		return MethodAny, true
	}
	for _, mn := range methodNames {
		if strings.EqualFold(name, mn.name) {
			return mn.m, true
		}
	}
	return 0, false
}

// Allows reports whether a request method is accepted.
// ANY accepts every method, including ones outside the known set.
func (m Method) Allows(method string) bool {
	if m == MethodAny {
		return true
	}
	req, ok := lookupMethod(method)
	return ok && req != MethodAny && m&req != 0
}

// Names lists the methods in the set. ANY lists every known method.
func (m Method) Names() []string {
	names := make([]string, 0, len(methodNames))
	for _, mn := range methodNames {
		if m&mn.m != 0 {
			names = append(names, mn.name)
		}
	}
	return names
}

func (m Method) String() string {
	if m == MethodAny {
		return "ANY"
	}
	return strings.Join(m.Names(), "|")
}
