package internal

import (
	"errors"
	"net/http"
)

// Configuration errors, raised while registering or compiling rules.
var (
	ErrRouterLocked  = errors.New("pathway: router is locked after build")
	ErrRuleCompiled  = errors.New("pathway: rule already compiled")
	ErrInvalidMethod = errors.New("pathway: invalid method")
	ErrInvalidTarget = errors.New("pathway: invalid target")
	ErrInvalidDomain = errors.New("pathway: invalid domain")
	ErrDuplicateName = errors.New("pathway: duplicate rule name")
	ErrInvalidRoutes = errors.New("pathway: invalid route definitions")
	ErrUnknownRoute  = errors.New("pathway: unknown route name")
	ErrNilDispatcher = errors.New("pathway: dispatcher is nil")
)

// Resolution errors returned to the dispatch layer.
var (
	ErrNotFound         = errors.New("pathway: no rule matched")
	ErrMethodNotAllowed = errors.New("pathway: method not allowed")
)

// Cache errors.
var (
	ErrCacheVersion  = errors.New("pathway: unsupported cache version")
	ErrCacheCorrupt  = errors.New("pathway: cache checksum mismatch")
	ErrStaleCache    = errors.New("pathway: cached expression differs from compiled rule")
	ErrCacheOutdated = errors.New("pathway: cached rules differ from defined rules")
)

// HTTPError is returned by dispatchers that want a specific status code
// rendered by the error handler.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// StatusCode maps err to the HTTP status the default error handler writes.
func StatusCode(err error) int {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
