package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/pathway/pkg/logger"
)

// Dispatcher invokes whatever a resolution names. Returning an error hands
// it to the error handler.
type Dispatcher interface {
	Dispatch(w http.ResponseWriter, r *http.Request, res Resolution) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(w http.ResponseWriter, r *http.Request, res Resolution) error

func (f DispatcherFunc) Dispatch(w http.ResponseWriter, r *http.Request, res Resolution) error {
	return f(w, r, res)
}

// KindDispatcher selects a dispatcher by target kind.
type KindDispatcher map[TargetKind]Dispatcher

func (k KindDispatcher) Dispatch(w http.ResponseWriter, r *http.Request, res Resolution) error {
	d, ok := k[res.Kind]
	if !ok || d == nil {
		return &HTTPError{
			Code:    http.StatusNotImplemented,
			Message: http.StatusText(http.StatusNotImplemented),
			Err:     fmt.Errorf("%w: kind %q", ErrNilDispatcher, res.Kind),
		}
	}
	return d.Dispatch(w, r, res)
}

// RedirectDispatcher answers with a redirect to the resolved action.
func RedirectDispatcher(code int) DispatcherFunc {
	return func(w http.ResponseWriter, r *http.Request, res Resolution) error {
		http.Redirect(w, r, res.Action, code)
		return nil
	}
}

// ErrorHandler renders misses and dispatcher errors.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler writes the status text for StatusCode(err).
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	http.Error(w, http.StatusText(code), code)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(fn ErrorHandler) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.errorHandler = fn
		}
	}
}

// WithHandlerLogger sets the logger. Defaults to the matcher's logger.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithHostSources sets where the host used for domain scopes comes from.
// Defaults to Request.Host.
func WithHostSources(sources ...HostSource) HandlerOption {
	return func(h *Handler) {
		h.hosts = NewHostExtractor(sources...)
	}
}

// Handler is an http.Handler that resolves requests with a Matcher and
// passes the resolution to a Dispatcher.
type Handler struct {
	matcher      *Matcher
	dispatcher   Dispatcher
	errorHandler ErrorHandler
	logger       *slog.Logger
	hosts        HostExtractor
}

// NewHandler creates a handler. It panics if m or d is nil.
func NewHandler(m *Matcher, d Dispatcher, opts ...HandlerOption) *Handler {
	if m == nil || d == nil {
		panic(ErrNilDispatcher)
	}
	h := &Handler{
		matcher:      m,
		dispatcher:   d,
		errorHandler: DefaultErrorHandler,
		logger:       m.Logger(),
		hosts:        NewHostExtractor(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := RequestFromHTTP(r)
	req.Host, _ = h.hosts.Extract(r)
	res := h.matcher.Check(req)

	if !res.Matched {
		err := ErrNotFound
		if res.MethodMismatch {
			err = ErrMethodNotAllowed
			w.Header().Set("Allow", strings.Join(h.matcher.Allowed(req).Names(), ", "))
		}
		h.logger.DebugContext(r.Context(), "route miss",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.String("host", req.Host),
			slog.Bool("method_mismatch", res.MethodMismatch),
		)
		h.errorHandler(w, r, err)
		return
	}

	resolution, _ := res.Resolution()
	r = r.WithContext(context.WithValue(r.Context(), matchKey{}, res))

	start := time.Now()
	rw := newResponseWriter(w)
	err := h.dispatcher.Dispatch(rw, r, resolution)
	if err == nil {
		h.logger.DebugContext(r.Context(), "route dispatched",
			slog.String("kind", string(resolution.Kind)),
			slog.String("action", resolution.Action),
			slog.Int("status", rw.status),
			slog.Int64("size", rw.size),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}

	level := slog.LevelError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, "dispatch failed",
		slog.String("kind", string(resolution.Kind)),
		slog.String("action", resolution.Action),
		slog.Bool("response_written", rw.written),
		slog.String("error", err.Error()),
	)
	// A dispatcher that already wrote a response keeps it.
	if !rw.written {
		h.errorHandler(rw, r, err)
	}
}

type matchKey struct{}

// MatchFromContext returns the match stored by Handler.
func MatchFromContext(ctx context.Context) (MatchResult, bool) {
	res, ok := ctx.Value(matchKey{}).(MatchResult)
	return res, ok
}

// RouteExtractor adds the matched rule's template and name to log records.
func RouteExtractor() logger.ContextExtractor {
	return func(ctx context.Context) []slog.Attr {
		res, ok := MatchFromContext(ctx)
		if !ok || res.Rule == nil {
			return nil
		}
		attrs := []slog.Attr{slog.String("route", res.Rule.Template())}
		if name := res.Rule.Name(); name != "" {
			attrs = append(attrs, slog.String("route_name", name))
		}
		return attrs
	}
}
