package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/pathway/pkg/blobstore"
	"github.com/dmitrymomot/pathway/pkg/logger"
)

// CacheVersion is the envelope format written by BuildCache.
const CacheVersion = 1

// DefaultCacheKey is the store key used by RouteCache.
const DefaultCacheKey = "pathway/routes.json"

type cacheEnvelope struct {
	CreatedAt  time.Time    `json:"created_at"`
	BuildID    string       `json:"build_id"`
	RootDomain string       `json:"root_domain,omitempty"`
	Checksum   string       `json:"checksum"`
	Rules      []cachedRule `json:"rules"`
	Version    int          `json:"version"`
}

type cachedRule struct {
	Definition
	Expression string `json:"expression"`
}

// CacheInfo describes a cache blob without replaying it.
type CacheInfo struct {
	CreatedAt  time.Time `json:"created_at"`
	BuildID    string    `json:"build_id"`
	RootDomain string    `json:"root_domain,omitempty"`
	Checksum   string    `json:"checksum"`
	Rules      int       `json:"rules"`
	Version    int       `json:"version"`
}

// BuildCache compiles every rule of r and serializes the rule list.
// The router is locked afterwards.
func BuildCache(r *Router) ([]byte, error) {
	if _, err := r.Build(); err != nil {
		return nil, err
	}

	rules := make([]cachedRule, 0, r.Len())
	for _, rule := range r.state.rules {
		expr, _ := rule.Compile()
		rules = append(rules, cachedRule{Definition: rule.Definition(), Expression: expr.String()})
	}

	sum, err := checksum(rules)
	if err != nil {
		return nil, err
	}
	env := cacheEnvelope{
		Version:    CacheVersion,
		BuildID:    uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		RootDomain: r.RootDomain(),
		Checksum:   sum,
		Rules:      rules,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode route cache: %w", err)
	}
	return data, nil
}

// LoadCache replays a blob produced by BuildCache into a new router.
// Every rule is recompiled and must produce the stored expression.
// The blob's root domain is applied before opts.
func LoadCache(blob []byte, opts ...RouterOption) (*Router, error) {
	env, err := decodeEnvelope(blob)
	if err != nil {
		return nil, err
	}

	base := []RouterOption{}
	if env.RootDomain != "" {
		base = append(base, WithRootDomain(env.RootDomain))
	}
	r := NewRouter(append(base, opts...)...)

	defs := make([]Definition, len(env.Rules))
	for i, cr := range env.Rules {
		defs[i] = cr.Definition
	}
	if err := r.Register(defs...); err != nil {
		return nil, fmt.Errorf("replay route cache: %w", err)
	}

	for i, rule := range r.state.rules {
		expr, err := rule.Compile()
		if err != nil {
			return nil, fmt.Errorf("replay route cache: rule %d (%s): %w", i, rule, err)
		}
		if got, want := expr.String(), env.Rules[i].Expression; got != want {
			return nil, fmt.Errorf("%w: rule %d (%s): %q != %q", ErrStaleCache, i, rule, got, want)
		}
	}
	return r, nil
}

// InspectCache validates a blob and returns its metadata.
func InspectCache(blob []byte) (CacheInfo, error) {
	env, err := decodeEnvelope(blob)
	if err != nil {
		return CacheInfo{}, err
	}
	return CacheInfo{
		Version:    env.Version,
		BuildID:    env.BuildID,
		CreatedAt:  env.CreatedAt,
		RootDomain: env.RootDomain,
		Checksum:   env.Checksum,
		Rules:      len(env.Rules),
	}, nil
}

func decodeEnvelope(blob []byte) (cacheEnvelope, error) {
	var env cacheEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return env, fmt.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	if env.Version != CacheVersion {
		return env, fmt.Errorf("%w: %d", ErrCacheVersion, env.Version)
	}
	sum, err := checksum(env.Rules)
	if err != nil {
		return env, err
	}
	if sum != env.Checksum {
		return env, ErrCacheCorrupt
	}
	return env, nil
}

func checksum(rules []cachedRule) (string, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("encode route cache: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteCacheFile builds the cache for r and writes it atomically to path.
func WriteCacheFile(path string, r *Router) error {
	blob, err := BuildCache(r)
	if err != nil {
		return err
	}
	store, err := blobstore.NewFile(filepath.Dir(path))
	if err != nil {
		return err
	}
	return store.Put(context.Background(), filepath.Base(path), blob)
}

// LoadCacheFile is LoadCache over a file path.
func LoadCacheFile(path string, opts ...RouterOption) (*Router, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route cache: %w", err)
	}
	return LoadCache(blob, opts...)
}

// CacheOption configures a RouteCache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	logger     *slog.Logger
	key        string
	routerOpts []RouterOption
}

func defaultCacheOptions() *cacheOptions {
	return &cacheOptions{
		logger: logger.NewNope(),
		key:    DefaultCacheKey,
	}
}

// WithCacheKey sets the store key.
func WithCacheKey(key string) CacheOption {
	return func(o *cacheOptions) {
		if key != "" {
			o.key = key
		}
	}
}

// WithCacheLogger sets the logger for load and rebuild decisions.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(o *cacheOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRouterOptions sets the options used for routers the cache creates.
func WithRouterOptions(opts ...RouterOption) CacheOption {
	return func(o *cacheOptions) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// RouteCache keeps the compiled rule list in a blob store so compilation
// is paid once per deployment.
type RouteCache struct {
	store blobstore.Store
	opts  *cacheOptions
	group singleflight.Group
}

// NewRouteCache creates a cache over store.
func NewRouteCache(store blobstore.Store, opts ...CacheOption) *RouteCache {
	o := defaultCacheOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &RouteCache{store: store, opts: o}
}

// Save builds the cache blob for r and stores it.
func (c *RouteCache) Save(ctx context.Context, r *Router) error {
	blob, err := BuildCache(r)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, c.opts.key, blob); err != nil {
		return fmt.Errorf("save route cache: %w", err)
	}
	c.opts.logger.InfoContext(ctx, "route cache saved",
		slog.String("key", c.opts.key),
		slog.Int("rules", r.Len()),
	)
	return nil
}

// Load reads and replays the stored blob.
// Returns blobstore.ErrNotFound when nothing is stored.
func (c *RouteCache) Load(ctx context.Context) (*Router, error) {
	blob, err := c.store.Get(ctx, c.opts.key)
	if err != nil {
		return nil, err
	}
	return LoadCache(blob, c.opts.routerOpts...)
}

// Info returns the metadata of the stored blob without replaying it.
func (c *RouteCache) Info(ctx context.Context) (CacheInfo, error) {
	blob, err := c.store.Get(ctx, c.opts.key)
	if err != nil {
		return CacheInfo{}, err
	}
	return InspectCache(blob)
}

// Invalidate removes the stored blob.
func (c *RouteCache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, c.opts.key)
}

// Warm returns a matcher for the rules registered by define. The stored
// cache is used when it holds exactly those rules; when it is missing,
// stale, unreadable or out of date, the defined rules are built and
// stored. A failed store write is logged and does not fail Warm.
// Concurrent calls share one load.
func (c *RouteCache) Warm(ctx context.Context, define func(*Router) error) (*Matcher, error) {
	v, err, _ := c.group.Do(c.opts.key, func() (any, error) {
		return c.warm(ctx, define)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matcher), nil
}

func (c *RouteCache) warm(ctx context.Context, define func(*Router) error) (*Matcher, error) {
	log := c.opts.logger.With(slog.String("key", c.opts.key))

	fresh := NewRouter(c.opts.routerOpts...)
	if err := define(fresh); err != nil {
		return nil, fmt.Errorf("define routes: %w", err)
	}

	r, err := c.Load(ctx)
	if err == nil && !sameRules(r, fresh) {
		err = ErrCacheOutdated
	}
	if err == nil {
		m, buildErr := r.Build()
		if buildErr == nil {
			log.DebugContext(ctx, "route cache loaded", slog.Int("rules", r.Len()))
			return m, nil
		}
		err = buildErr
	}

	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		log.InfoContext(ctx, "route cache missing, rebuilding")
	case errors.Is(err, ErrCacheOutdated):
		log.InfoContext(ctx, "route definitions changed, rebuilding")
	case errors.Is(err, ErrStaleCache), errors.Is(err, ErrCacheVersion), errors.Is(err, ErrCacheCorrupt):
		log.WarnContext(ctx, "route cache invalid, rebuilding", slog.String("error", err.Error()))
	default:
		log.ErrorContext(ctx, "route cache unavailable, rebuilding", slog.String("error", err.Error()))
	}

	m, err := fresh.Build()
	if err != nil {
		return nil, err
	}
	if err := c.Save(ctx, fresh); err != nil {
		log.ErrorContext(ctx, "route cache write failed", slog.String("error", err.Error()))
	}
	return m, nil
}

// sameRules reports whether two routers hold the same rules in the same
// order under the same root domain.
func sameRules(a, b *Router) bool {
	if a.RootDomain() != b.RootDomain() {
		return false
	}
	return slices.EqualFunc(a.ToArray(), b.ToArray(), func(x, y Definition) bool {
		return x.Name == y.Name &&
			x.Method == y.Method &&
			x.Template == y.Template &&
			x.Domain == y.Domain &&
			x.Target == y.Target &&
			maps.Equal(x.Constraints, y.Constraints)
	})
}
