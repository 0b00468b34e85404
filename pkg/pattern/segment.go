package pattern

import "strings"

// Kind classifies a template segment.
type Kind uint8

const (
	// Literal segments are matched verbatim.
	Literal Kind = iota
	// Param segments are bound to a named parameter.
	Param
)

func (k Kind) String() string {
	if k == Param {
		return "param"
	}
	return "literal"
}

// Segment is one "/"-delimited element of a route template.
type Segment struct {
	// Value is the literal text or the parameter name.
	Value    string
	Kind     Kind
	Optional bool
}

// Parse splits a template into classified segments.
// A single leading "/" is ignored, so "/" and "" both yield no segments.
func Parse(template string) ([]Segment, error) {
	tpl := strings.TrimPrefix(template, "/")
	if tpl == "" {
		return nil, nil
	}

	parts := strings.Split(tpl, "/")
	segs := make([]Segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	var inGroup, optionalSeen bool
	for _, raw := range parts {
		part := raw

		opens := strings.HasPrefix(part, "[")
		if opens {
			if inGroup {
				return nil, templateErr(template, raw, ErrUnbalancedBrackets)
			}
			part = part[1:]
		}

		closes := strings.HasSuffix(part, "]")
		if closes {
			if !inGroup && !opens {
				return nil, templateErr(template, raw, ErrUnbalancedBrackets)
			}
			part = part[:len(part)-1]
		}

		if strings.ContainsAny(part, "[]") {
			return nil, templateErr(template, raw, ErrUnbalancedBrackets)
		}
		if part == "" {
			return nil, templateErr(template, raw, ErrEmptySegment)
		}

		seg, shorthand, err := classify(part)
		if err != nil {
			return nil, templateErr(template, raw, err)
		}
		seg.Optional = opens || inGroup || shorthand

		if seg.Optional {
			optionalSeen = true
		} else if optionalSeen {
			return nil, templateErr(template, raw, ErrRequiredAfterOptional)
		}

		if seg.Kind == Param {
			if _, dup := seen[seg.Value]; dup {
				return nil, templateErr(template, raw, ErrDuplicateParam)
			}
			seen[seg.Value] = struct{}{}
		}

		segs = append(segs, seg)
		inGroup = (opens || inGroup) && !closes
	}

	if inGroup {
		return nil, templateErr(template, "", ErrUnbalancedBrackets)
	}

	return segs, nil
}

// classify recognises ":name", "<name>" and "<name?>".
// The second result reports the "<name?>" optional shorthand.
func classify(part string) (Segment, bool, error) {
	switch {
	case part[0] == ':':
		name := part[1:]
		if err := validateName(name); err != nil {
			return Segment{}, false, err
		}
		return Segment{Kind: Param, Value: name}, false, nil

	case part[0] == '<':
		if !strings.HasSuffix(part, ">") {
			return Segment{}, false, ErrInvalidParamName
		}
		name := part[1 : len(part)-1]
		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")
		if err := validateName(name); err != nil {
			return Segment{}, false, err
		}
		return Segment{Kind: Param, Value: name}, optional, nil
	}

	return Segment{Kind: Literal, Value: part}, false, nil
}

// validateName accepts Go identifiers, which are also valid capture group names.
func validateName(name string) error {
	if name == "" {
		return ErrEmptyParamName
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return ErrInvalidParamName
		}
	}
	return nil
}
