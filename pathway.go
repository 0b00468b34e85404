package pathway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pathway/internal"
	"github.com/dmitrymomot/pathway/pkg/blobstore"
	"github.com/dmitrymomot/pathway/pkg/logger"
)

// Type aliases - public API
type (
	// Router collects rules at bootstrap. Build locks it and returns a Matcher.
	Router = internal.Router

	// Rule pairs a URL template with a method, target, domain and constraints.
	Rule = internal.Rule

	// Matcher is the immutable, concurrency-safe result of Router.Build.
	Matcher = internal.Matcher

	// Request is the (method, path, host) triple a Matcher resolves.
	Request = internal.Request

	// MatchResult reports the outcome of a match attempt.
	MatchResult = internal.MatchResult

	// Resolution is the dispatch-ready form of a successful match.
	Resolution = internal.Resolution

	// Target names what a rule dispatches to.
	Target = internal.Target

	// TargetKind distinguishes controller, callback, redirect and view targets.
	TargetKind = internal.TargetKind

	// Method is a set of HTTP methods a rule accepts.
	Method = internal.Method

	// Definition is the serializable form of a rule.
	Definition = internal.Definition

	// RouterOption configures a Router.
	RouterOption = internal.RouterOption

	// RouteCache persists compiled rule lists in a blobstore.Store.
	RouteCache = internal.RouteCache

	// CacheOption configures a RouteCache.
	CacheOption = internal.CacheOption

	// CacheInfo is the metadata of a cache blob.
	CacheInfo = internal.CacheInfo

	// Handler serves HTTP requests through a Matcher and a Dispatcher.
	Handler = internal.Handler

	// HandlerOption configures a Handler.
	HandlerOption = internal.HandlerOption

	// Dispatcher invokes the target of a resolution.
	Dispatcher = internal.Dispatcher

	// DispatcherFunc adapts a function to Dispatcher.
	DispatcherFunc = internal.DispatcherFunc

	// KindDispatcher selects a Dispatcher by target kind.
	KindDispatcher = internal.KindDispatcher

	// ErrorHandler renders errors from matching and dispatch.
	ErrorHandler = internal.ErrorHandler

	// HTTPError carries a status code through the error handler.
	HTTPError = internal.HTTPError

	// HostSource reads the request host from one place (Host, header, Forwarded).
	HostSource = internal.HostSource

	// ServeOption configures Serve.
	ServeOption = internal.ServeOption

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Methods accepted by rules.
const (
	MethodGet     = internal.MethodGet
	MethodPost    = internal.MethodPost
	MethodPut     = internal.MethodPut
	MethodDelete  = internal.MethodDelete
	MethodPatch   = internal.MethodPatch
	MethodHead    = internal.MethodHead
	MethodOptions = internal.MethodOptions
	MethodAny     = internal.MethodAny
)

// Target kinds.
const (
	KindController = internal.KindController
	KindCallback   = internal.KindCallback
	KindRedirect   = internal.KindRedirect
	KindView       = internal.KindView
)

// Cache blob defaults.
const (
	CacheVersion    = internal.CacheVersion
	DefaultCacheKey = internal.DefaultCacheKey
)

// Errors
var (
	ErrRouterLocked     = internal.ErrRouterLocked
	ErrRuleCompiled     = internal.ErrRuleCompiled
	ErrInvalidMethod    = internal.ErrInvalidMethod
	ErrInvalidTarget    = internal.ErrInvalidTarget
	ErrInvalidDomain    = internal.ErrInvalidDomain
	ErrDuplicateName    = internal.ErrDuplicateName
	ErrInvalidRoutes    = internal.ErrInvalidRoutes
	ErrUnknownRoute     = internal.ErrUnknownRoute
	ErrNilDispatcher    = internal.ErrNilDispatcher
	ErrNotFound         = internal.ErrNotFound
	ErrMethodNotAllowed = internal.ErrMethodNotAllowed
	ErrCacheVersion     = internal.ErrCacheVersion
	ErrCacheCorrupt     = internal.ErrCacheCorrupt
	ErrStaleCache       = internal.ErrStaleCache
	ErrCacheOutdated    = internal.ErrCacheOutdated
)

// Constructors

// New creates an empty Router.
//
// Example:
//
//	r := pathway.New(
//	    pathway.WithRootDomain("example.com"),
//	    pathway.WithGlobalPattern("id", `\d+`),
//	)
//	r.Get("blog/:id", pathway.Controller("blog/read/:id")).As("blog.read")
//	m, err := r.Build()
func New(opts ...RouterOption) *Router {
	return internal.NewRouter(opts...)
}

// NewRule creates a standalone rule for Router.AddRule or Router.DomainRules.
func NewRule(method Method, template string, target Target) *Rule {
	return internal.NewRule(method, template, target)
}

// ParseMethod parses "GET", "get|post", "*" or "ANY" into a Method set.
func ParseMethod(s string) (Method, error) {
	return internal.ParseMethod(s)
}

// Controller targets a "module/controller/action" string.
func Controller(action string) Target { return internal.Controller(action) }

// Callback targets a named callback registered with the dispatcher.
func Callback(name string) Target { return internal.Callback(name) }

// Redirect targets a URL; placeholders are filled from route params.
func Redirect(url string) Target { return internal.Redirect(url) }

// View targets a template name.
func View(name string) Target { return internal.View(name) }

// ParseTarget parses "kind:value"; a value without a known kind is a controller.
func ParseTarget(s string) (Target, error) { return internal.ParseTarget(s) }

// RequestFromHTTP builds a Request from an incoming HTTP request.
func RequestFromHTTP(r *http.Request) Request {
	return internal.RequestFromHTTP(r)
}

// Router options

// WithRootDomain sets the domain bare domain labels expand under.
// With root "example.com", Domain("api", ...) scopes to "api.example.com".
func WithRootDomain(domain string) RouterOption {
	return internal.WithRootDomain(domain)
}

// WithLogger sets the logger for build diagnostics.
func WithLogger(l *slog.Logger) RouterOption {
	return internal.WithLogger(l)
}

// WithGlobalPattern adds a constraint applied to every rule registered
// afterwards that has no constraint of its own for that parameter.
func WithGlobalPattern(name, fragment string) RouterOption {
	return internal.WithGlobalPattern(name, fragment)
}

// Definitions

// LoadDefinitions reads a YAML route file into a new Router.
// Options are applied after the file's own root_domain and patterns.
func LoadDefinitions(r io.Reader, opts ...RouterOption) (*Router, error) {
	return internal.LoadDefinitions(r, opts...)
}

// LoadDefinitionsFile is LoadDefinitions for a path on disk.
func LoadDefinitionsFile(path string, opts ...RouterOption) (*Router, error) {
	return internal.LoadDefinitionsFile(path, opts...)
}

// Cache

// BuildCache builds the router and serializes its rules with their
// compiled expressions.
func BuildCache(r *Router) ([]byte, error) { return internal.BuildCache(r) }

// LoadCache restores a router from a cache blob. The router is not built.
func LoadCache(blob []byte, opts ...RouterOption) (*Router, error) {
	return internal.LoadCache(blob, opts...)
}

// InspectCache validates a blob and returns its metadata.
func InspectCache(blob []byte) (CacheInfo, error) { return internal.InspectCache(blob) }

// WriteCacheFile builds the cache for r and writes it atomically to path.
func WriteCacheFile(path string, r *Router) error { return internal.WriteCacheFile(path, r) }

// LoadCacheFile is LoadCache over a file path.
func LoadCacheFile(path string, opts ...RouterOption) (*Router, error) {
	return internal.LoadCacheFile(path, opts...)
}

// NewRouteCache creates a RouteCache over a store.
//
// Example:
//
//	cache := pathway.NewRouteCache(blobstore.NewRedis(client),
//	    pathway.WithCacheLogger(log),
//	)
//	m, err := cache.Warm(ctx, func(r *pathway.Router) error {
//	    r.Get("blog/:id", pathway.Controller("blog/read/:id"))
//	    return nil
//	})
func NewRouteCache(store blobstore.Store, opts ...CacheOption) *RouteCache {
	return internal.NewRouteCache(store, opts...)
}

// WithCacheKey sets the store key. Defaults to "pathway/routes.json".
func WithCacheKey(key string) CacheOption { return internal.WithCacheKey(key) }

// WithCacheLogger sets the logger for load and rebuild decisions.
func WithCacheLogger(l *slog.Logger) CacheOption { return internal.WithCacheLogger(l) }

// WithRouterOptions sets options for routers the cache creates.
func WithRouterOptions(opts ...RouterOption) CacheOption {
	return internal.WithRouterOptions(opts...)
}

// HTTP

// NewHandler creates an http.Handler that matches requests with m and
// hands resolutions to d. Misses are rendered as 404 or 405.
func NewHandler(m *Matcher, d Dispatcher, opts ...HandlerOption) *Handler {
	return internal.NewHandler(m, d, opts...)
}

// WithErrorHandler sets the renderer for misses and dispatch errors.
func WithErrorHandler(fn ErrorHandler) HandlerOption { return internal.WithErrorHandler(fn) }

// WithHandlerLogger sets the logger for misses and dispatch outcomes.
func WithHandlerLogger(l *slog.Logger) HandlerOption { return internal.WithHandlerLogger(l) }

// WithHostSources sets where the request host is read from, in order.
//
// Example:
//
//	pathway.WithHostSources(pathway.FromForwarded(), pathway.FromHeader("X-Forwarded-Host"), pathway.FromHost())
func WithHostSources(sources ...HostSource) HandlerOption {
	return internal.WithHostSources(sources...)
}

// FromHost reads the Host header.
func FromHost() HostSource { return internal.FromHost() }

// FromHeader reads the first value of a header such as X-Forwarded-Host.
func FromHeader(name string) HostSource { return internal.FromHeader(name) }

// FromForwarded reads the host= parameter of an RFC 7239 Forwarded header.
func FromForwarded() HostSource { return internal.FromForwarded() }

// RedirectDispatcher answers redirect targets with the given status code.
func RedirectDispatcher(code int) DispatcherFunc { return internal.RedirectDispatcher(code) }

// DefaultErrorHandler writes a plain-text error with StatusCode(err).
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	internal.DefaultErrorHandler(w, r, err)
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// StatusCode maps an error to an HTTP status code.
func StatusCode(err error) int { return internal.StatusCode(err) }

// MatchFromContext returns the match stored by Handler.
func MatchFromContext(ctx context.Context) (MatchResult, bool) {
	return internal.MatchFromContext(ctx)
}

// RouteExtractor adds the matched route template and name to log records.
func RouteExtractor() ContextExtractor { return internal.RouteExtractor() }

// Param returns a typed route parameter, or the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](params map[string]string, name string) T {
	return internal.Param[T](params, name)
}

// ParamDefault returns a typed route parameter, or def when absent or invalid.
func ParamDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](params map[string]string, name string, def T) T {
	return internal.ParamDefault(params, name, def)
}

// Server

// Serve runs handler until ctx is done or SIGINT/SIGTERM, then shuts down
// gracefully and runs shutdown hooks.
func Serve(ctx context.Context, handler http.Handler, opts ...ServeOption) error {
	return internal.Serve(ctx, handler, opts...)
}

// Address sets the listen address. Defaults to ":8080".
func Address(addr string) ServeOption { return internal.Address(addr) }

// ServeLogger sets the server logger.
func ServeLogger(l *slog.Logger) ServeOption { return internal.ServeLogger(l) }

// ShutdownTimeout bounds graceful shutdown.
func ShutdownTimeout(d time.Duration) ServeOption { return internal.ShutdownTimeout(d) }

// ShutdownHook registers a function run after the server stops.
func ShutdownHook(fn func(context.Context) error) ServeOption {
	return internal.ShutdownHook(fn)
}
