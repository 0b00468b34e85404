package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pathway"
	"github.com/dmitrymomot/pathway/pkg/blobstore"
	"github.com/dmitrymomot/pathway/pkg/health"
	"github.com/dmitrymomot/pathway/pkg/logger"
	"github.com/dmitrymomot/pathway/pkg/redis"
)

var (
	errNoRoutes     = errors.New("no route source: set --routes or --cache")
	errNoCache      = errors.New("no cache configured: set --cache")
	errCacheScheme  = errors.New("unsupported cache scheme")
	errMissingValue = errors.New("missing value")
)

// config holds the global flags shared by every command.
type config struct {
	log        *slog.Logger
	routes     string
	rootDomain string
	cache      string
	cacheKey   string
	logLevel   string
	logText    bool
}

func (c *config) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&c.routes, "routes", "r", "", "Route definitions file (env PATHWAY_ROUTES)")
	f.StringVar(&c.rootDomain, "root-domain", "", "Root domain for bare domain labels (env PATHWAY_ROOT_DOMAIN)")
	f.StringVar(&c.cache, "cache", "", "Route cache location (env PATHWAY_CACHE)")
	f.StringVar(&c.cacheKey, "cache-key", "", "Route cache key (env PATHWAY_CACHE_KEY)")
	f.StringVar(&c.logLevel, "log-level", "", "Log level (env PATHWAY_LOG_LEVEL)")
	f.BoolVar(&c.logText, "log-text", false, "Log in text format instead of JSON")
}

// complete applies environment fallbacks and builds the logger.
func (c *config) complete(stderr io.Writer) error {
	c.routes = firstNonEmpty(c.routes, os.Getenv("PATHWAY_ROUTES"))
	c.rootDomain = firstNonEmpty(c.rootDomain, os.Getenv("PATHWAY_ROOT_DOMAIN"))
	c.cache = firstNonEmpty(c.cache, os.Getenv("PATHWAY_CACHE"))
	c.cacheKey = firstNonEmpty(c.cacheKey, os.Getenv("PATHWAY_CACHE_KEY"), pathway.DefaultCacheKey)
	c.logLevel = firstNonEmpty(c.logLevel, os.Getenv("PATHWAY_LOG_LEVEL"), "info")

	level, err := logger.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	opts := []logger.Option{
		logger.WithLevel(level),
		logger.WithOutput(stderr),
		logger.WithExtractors(logger.ContextAttrs(), pathway.RouteExtractor()),
	}
	if c.logText {
		opts = append(opts, logger.WithTextFormat())
	}
	c.log = logger.NewWithSentry(logger.SentryConfig{
		DSN:         os.Getenv("SENTRY_DSN"),
		Environment: firstNonEmpty(os.Getenv("SENTRY_ENVIRONMENT"), "production"),
		MinLevel:    level,
	}, opts...)
	return nil
}

func (c *config) routerOptions() []pathway.RouterOption {
	opts := []pathway.RouterOption{pathway.WithLogger(c.log)}
	if c.rootDomain != "" {
		opts = append(opts, pathway.WithRootDomain(c.rootDomain))
	}
	return opts
}

// loadDefinitions reads the --routes file.
func (c *config) loadDefinitions() (*pathway.Router, error) {
	return pathway.LoadDefinitionsFile(c.routes, c.routerOptions()...)
}

// loadRouter reads the --routes file, or the cache when no file is set.
func (c *config) loadRouter(ctx context.Context) (*pathway.Router, error) {
	if c.routes != "" {
		return c.loadDefinitions()
	}
	if c.cache == "" {
		return nil, errNoRoutes
	}
	rc, closeStore, err := c.routeCache(ctx, c.routerOptions()...)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return rc.Load(ctx)
}

// routeCache opens the configured store and wraps it in a RouteCache.
// The returned func releases the store connection.
func (c *config) routeCache(ctx context.Context, opts ...pathway.RouterOption) (*pathway.RouteCache, func(), error) {
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	rc := pathway.NewRouteCache(st.store,
		pathway.WithCacheKey(c.cacheKey),
		pathway.WithCacheLogger(c.log),
		pathway.WithRouterOptions(opts...),
	)
	return rc, st.close, nil
}

// store is an opened cache backend with its readiness check.
type store struct {
	store blobstore.Store
	check health.CheckFunc
	close func()
}

// openStore parses --cache:
//
//	file:///var/cache/pathway   local directory
//	redis://localhost:6379/0     Redis, rediss:// for TLS
//	s3://bucket/prefix           S3 or an S3-compatible endpoint
func (c *config) openStore(ctx context.Context) (*store, error) {
	if c.cache == "" {
		return nil, errNoCache
	}
	u, err := url.Parse(c.cache)
	if err != nil {
		return nil, fmt.Errorf("parse --cache: %w", err)
	}

	noop := func() {}
	switch u.Scheme {
	case "file", "":
		dir := u.Path
		if u.Scheme == "" {
			dir = c.cache
		}
		fs, err := blobstore.NewFile(dir)
		if err != nil {
			return nil, err
		}
		return &store{store: fs, close: noop}, nil

	case "redis", "rediss":
		client, err := redis.Open(ctx, c.cache)
		if err != nil {
			return nil, err
		}
		return &store{
			store: blobstore.NewRedis(client),
			check: redis.Healthcheck(client),
			close: func() { _ = client.Close() },
		}, nil

	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: s3 bucket", errMissingValue)
		}
		s3, err := blobstore.NewS3(blobstore.S3Config{
			Bucket:    u.Host,
			Prefix:    strings.Trim(u.Path, "/"),
			AccessKey: os.Getenv("PATHWAY_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PATHWAY_S3_SECRET_KEY"),
			Region:    os.Getenv("PATHWAY_S3_REGION"),
			Endpoint:  os.Getenv("PATHWAY_S3_ENDPOINT"),
			PathStyle: os.Getenv("PATHWAY_S3_PATH_STYLE") == "true",
		})
		if err != nil {
			return nil, err
		}
		return &store{store: s3, close: noop}, nil
	}

	return nil, fmt.Errorf("%w: %q", errCacheScheme, u.Scheme)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
