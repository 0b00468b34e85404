package pattern

import (
	"errors"
	"fmt"
)

// Sentinel errors for template compilation.
var (
	// ErrInvalidTemplate is wrapped by every template configuration error.
	ErrInvalidTemplate = errors.New("pattern: invalid route template")

	ErrUnbalancedBrackets    = errors.New("pattern: unbalanced optional brackets")
	ErrEmptySegment          = errors.New("pattern: empty segment")
	ErrEmptyParamName        = errors.New("pattern: empty parameter name")
	ErrInvalidParamName      = errors.New("pattern: invalid parameter name")
	ErrDuplicateParam        = errors.New("pattern: duplicate parameter name")
	ErrRequiredAfterOptional = errors.New("pattern: required segment after optional segment")
	ErrInvalidConstraint     = errors.New("pattern: invalid constraint fragment")
)

// Sentinel errors for reverse building.
var (
	ErrMissingParam  = errors.New("pattern: missing parameter")
	ErrParamMismatch = errors.New("pattern: parameter does not satisfy constraint")
)

// TemplateError describes a configuration error in a route template.
type TemplateError struct {
	Err      error
	Template string
	Segment  string
}

func (e *TemplateError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("%s in template %q", e.Err, e.Template)
	}
	return fmt.Sprintf("%s in template %q at segment %q", e.Err, e.Template, e.Segment)
}

// Unwrap exposes both ErrInvalidTemplate and the specific cause.
func (e *TemplateError) Unwrap() []error {
	return []error{ErrInvalidTemplate, e.Err}
}

func templateErr(tpl, seg string, err error) error {
	return &TemplateError{Template: tpl, Segment: seg, Err: err}
}
