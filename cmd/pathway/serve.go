package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pathway"
	"github.com/dmitrymomot/pathway/middlewares"
	"github.com/dmitrymomot/pathway/pkg/health"
)

type serveFlags struct {
	addr           string
	timeout        time.Duration
	shutdown       time.Duration
	redirectCode   int
	trustForwarded bool
}

func serveCmd(cfg *config) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Start an HTTP server that resolves every request against the route table.
Redirect targets are answered with a redirect. Every other resolution is
returned as JSON, which makes the server useful for checking a route table
behind a real proxy.

With both --routes and --cache the cache is loaded when valid and rebuilt
from --routes otherwise. /healthz and /readyz serve liveness and readiness.

Examples:
  pathway serve --routes routes.yaml --addr :8080
  pathway serve --routes routes.yaml --cache redis://localhost:6379/0 --trust-forwarded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.addr = firstNonEmpty(flags.addr, os.Getenv("PATHWAY_ADDR"), ":8080")
			return runServe(cmd.Context(), cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.addr, "addr", "a", "", "Listen address (env PATHWAY_ADDR, default :8080)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Per-request timeout")
	cmd.Flags().DurationVar(&flags.shutdown, "shutdown-timeout", 15*time.Second, "Graceful shutdown timeout")
	cmd.Flags().IntVar(&flags.redirectCode, "redirect-code", http.StatusFound, "Status code for redirect targets")
	cmd.Flags().BoolVar(&flags.trustForwarded, "trust-forwarded", false, "Read the host from Forwarded and X-Forwarded-Host")

	return cmd
}

func runServe(ctx context.Context, cfg *config, flags serveFlags) error {
	var ready health.Gate
	checks := health.Checks{"routes": ready.Check()}
	opts := []pathway.ServeOption{
		pathway.Address(flags.addr),
		pathway.ServeLogger(cfg.log),
		pathway.ShutdownTimeout(flags.shutdown),
		pathway.ShutdownHook(func(context.Context) error {
			ready.Close()
			return nil
		}),
	}

	m, err := warmMatcher(ctx, cfg, checks, &opts)
	if err != nil {
		return err
	}
	ready.Open()

	hostSources := []pathway.HostSource{pathway.FromHost()}
	if flags.trustForwarded {
		hostSources = []pathway.HostSource{
			pathway.FromForwarded(),
			pathway.FromHeader("X-Forwarded-Host"),
			pathway.FromHost(),
		}
	}

	h := pathway.NewHandler(m, pathway.KindDispatcher{
		pathway.KindController: pathway.DispatcherFunc(echoResolution),
		pathway.KindCallback:   pathway.DispatcherFunc(echoResolution),
		pathway.KindView:       pathway.DispatcherFunc(echoResolution),
		pathway.KindRedirect:   pathway.RedirectDispatcher(flags.redirectCode),
	},
		pathway.WithHandlerLogger(cfg.log),
		pathway.WithErrorHandler(jsonErrorHandler),
		pathway.WithHostSources(hostSources...),
	)

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middlewares.RequestID(),
		middlewares.Recover(cfg.log, middlewares.WithRecoverHandler(func(w http.ResponseWriter, r *http.Request, err *middlewares.PanicError) {
			jsonErrorHandler(w, r, err)
		})),
		middleware.Timeout(flags.timeout),
	)
	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(checks, health.WithLogger(cfg.log)))
	r.Handle("/*", h)

	cfg.log.InfoContext(ctx, "route table ready",
		slog.Int("rules", len(m.Rules())),
		slog.Any("domains", m.Domains()),
	)
	return pathway.Serve(ctx, r, opts...)
}

// warmMatcher builds the matcher from --routes, --cache or both, registering
// store checks and shutdown hooks as it goes.
func warmMatcher(ctx context.Context, cfg *config, checks health.Checks, opts *[]pathway.ServeOption) (*pathway.Matcher, error) {
	if cfg.cache == "" {
		if cfg.routes == "" {
			return nil, errNoRoutes
		}
		r, err := cfg.loadDefinitions()
		if err != nil {
			return nil, err
		}
		return r.Build()
	}

	st, err := cfg.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if st.check != nil {
		checks["cache"] = st.check
	}
	*opts = append(*opts, pathway.ShutdownHook(func(context.Context) error {
		st.close()
		return nil
	}))

	routerOpts := cfg.routerOptions()
	var src *pathway.Router
	if cfg.routes != "" {
		if src, err = cfg.loadDefinitions(); err != nil {
			return nil, err
		}
		if src.RootDomain() != "" {
			routerOpts = append(routerOpts, pathway.WithRootDomain(src.RootDomain()))
		}
	}

	rc := pathway.NewRouteCache(st.store,
		pathway.WithCacheKey(cfg.cacheKey),
		pathway.WithCacheLogger(cfg.log),
		pathway.WithRouterOptions(routerOpts...),
	)
	if src == nil {
		r, err := rc.Load(ctx)
		if err != nil {
			return nil, err
		}
		return r.Build()
	}
	return rc.Warm(ctx, func(r *pathway.Router) error {
		return r.Register(src.ToArray()...)
	})
}

// resolutionBody is the JSON answered for non-redirect targets.
type resolutionBody struct {
	pathway.Resolution
	Rule string `json:"rule"`
	Name string `json:"name,omitempty"`
}

func echoResolution(w http.ResponseWriter, r *http.Request, res pathway.Resolution) error {
	body := resolutionBody{Resolution: res}
	if match, ok := pathway.MatchFromContext(r.Context()); ok {
		body.Rule = match.Rule.String()
		body.Name = match.Rule.Name()
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(body)
}

func jsonErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := pathway.StatusCode(err)
	msg := http.StatusText(code)
	var httpErr *pathway.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		msg = httpErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  msg,
		"status": code,
	})
}
