package internal_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/internal"
	"github.com/dmitrymomot/pathway/pkg/pattern"
)

func get(path, host string) internal.Request {
	return internal.Request{Method: "GET", Path: path, Host: host}
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first string
		want  string
	}{
		{name: "id registered first", first: "home/:id", want: "index/by-id"},
		{name: "name registered first", first: "home/:name", want: "index/by-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := internal.NewRouter()
			if tt.first == "home/:id" {
				r.Get("home/:id", internal.Controller("index/by-id"))
				r.Get("home/:name", internal.Controller("index/by-name"))
			} else {
				r.Get("home/:name", internal.Controller("index/by-name"))
				r.Get("home/:id", internal.Controller("index/by-id"))
			}
			m := r.MustBuild()

			res := m.Check(get("/home/123", ""))
			require.True(t, res.Matched)
			require.Equal(t, tt.want, res.Rule.Target().Value)
			require.Equal(t, tt.first, res.Rule.Template())
		})
	}
}

func TestMatcher_PathNormalisation(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Any("home/[:id]/[:name]", internal.Controller("index/index"))
	r.Get("/", internal.View("welcome"))
	m := r.MustBuild()

	require.True(t, m.Check(get("/home/1", "")).Matched)
	require.True(t, m.Check(get("home/1", "")).Matched)
	require.False(t, m.Check(get("/home/1/", "")).Matched)
	require.False(t, m.Check(get("//home/1", "")).Matched)

	res := m.Check(get("/", ""))
	require.True(t, res.Matched)
	require.Equal(t, internal.View("welcome"), res.Rule.Target())
}

func TestMatcher_Methods(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("users/:id", internal.Controller("users/show"))
	r.Put("users/:id", internal.Controller("users/update"))
	r.Any("ping", internal.Callback("ping"))
	m := r.MustBuild()

	res := m.Check(internal.Request{Method: "put", Path: "/users/1"})
	require.True(t, res.Matched)
	require.Equal(t, "users/update", res.Rule.Target().Value)

	res = m.Check(internal.Request{Method: "DELETE", Path: "/users/1"})
	require.False(t, res.Matched)
	require.True(t, res.MethodMismatch)
	require.Equal(t, internal.MethodGet|internal.MethodPut, m.Allowed(internal.Request{Path: "/users/1"}))

	res = m.Check(internal.Request{Method: "DELETE", Path: "/nope"})
	require.False(t, res.Matched)
	require.False(t, res.MethodMismatch)

	for _, method := range []string{"GET", "POST", "OPTIONS", "TRACE"} {
		require.True(t, m.Check(internal.Request{Method: method, Path: "/ping"}).Matched, method)
	}
}

func TestMatcher_Resolve(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("home/:id", internal.Controller("index/index/:id"))
	m := r.MustBuild()

	res, err := m.Resolve(get("/home/42", ""))
	require.NoError(t, err)
	require.Equal(t, internal.Resolution{
		Kind:   internal.KindController,
		Action: "index/index/42",
		Params: map[string]string{"id": "42"},
	}, res)

	_, err = m.Resolve(get("/missing", ""))
	require.ErrorIs(t, err, internal.ErrNotFound)

	_, err = m.Resolve(internal.Request{Method: "POST", Path: "/home/42"})
	require.ErrorIs(t, err, internal.ErrMethodNotAllowed)
}

func TestMatcher_DomainScopes(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter(internal.WithRootDomain("example.com"))
	r.Get("users/:id", internal.Controller("site/users"))
	r.Domain("api", func(api *internal.Router) {
		api.Get("users/:id", internal.Controller("api/users"))
	})
	r.Domain("*.example.com", func(tenant *internal.Router) {
		tenant.Get("users/:id", internal.Controller("tenant/users"))
	})
	r.Domain("admin.example.org", func(a *internal.Router) {
		a.Get("dashboard", internal.View("admin"))
	})
	m := r.MustBuild()

	tests := []struct {
		host    string
		path    string
		want    string
		matched bool
	}{
		{host: "api.example.com", path: "/users/1", want: "api/users", matched: true},
		{host: "API.Example.com:8443", path: "/users/1", want: "api/users", matched: true},
		{host: "acme.example.com", path: "/users/1", want: "tenant/users", matched: true},
		{host: "example.com", path: "/users/1", want: "site/users", matched: true},
		{host: "", path: "/users/1", want: "site/users", matched: true},
		{host: "other.net", path: "/users/1", want: "site/users", matched: true},
		{host: "admin.example.org", path: "/dashboard", want: "admin", matched: true},
		// Exactly one partition is evaluated: no fallthrough to the default rules.
		{host: "admin.example.org", path: "/users/1", matched: false},
		// Default rules never see domain-only paths.
		{host: "example.com", path: "/dashboard", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.host+tt.path, func(t *testing.T) {
			t.Parallel()

			res := m.Check(get(tt.path, tt.host))
			require.Equal(t, tt.matched, res.Matched)
			if tt.matched {
				require.Equal(t, tt.want, res.Rule.Target().Value)
			}
		})
	}

	require.Equal(t, []string{"api.example.com", "*.example.com", "admin.example.org"}, m.Domains())
}

func TestMatcher_DomainRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter(internal.WithRootDomain("example.com"))
	r.Domain("api", func(api *internal.Router) {
		api.Get("v/:version", internal.Callback("first"))
	})
	r.Get("v/:version", internal.Callback("global"))
	// Same scope written differently joins the same partition, after the first rule.
	r.Domain("api.example.com", func(api *internal.Router) {
		api.Get("v/:version", internal.Callback("second"))
	})
	m := r.MustBuild()

	res := m.Check(get("/v/2", "api.example.com"))
	require.Equal(t, "first", res.Rule.Target().Value)
	require.Equal(t, "global", m.Check(get("/v/2", "www.example.com")).Rule.Target().Value)
}

func TestRouter_DomainRulesAndAddRule(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.DomainRules("shop.example.com",
		internal.NewRule(internal.MethodGet, "cart", internal.View("cart")),
		internal.NewRule(internal.MethodGet, "item/:sku", internal.Controller("shop/item")),
	)
	r.Domain("blog.example.com", func(b *internal.Router) {
		b.AddRule(internal.NewRule(internal.MethodGet, "feed", internal.View("feed")))
	})
	m := r.MustBuild()

	require.True(t, m.Check(get("/cart", "shop.example.com")).Matched)
	require.True(t, m.Check(get("/item/x1", "shop.example.com")).Matched)
	require.True(t, m.Check(get("/feed", "blog.example.com")).Matched)
	require.False(t, m.Check(get("/feed", "shop.example.com")).Matched)

	rules := r.Rules()
	require.Len(t, rules, 3)
	require.Equal(t, "shop.example.com", rules[0].Domain())
	require.Equal(t, "blog.example.com", rules[2].Domain())
}

func TestRouter_Group(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Group("/admin/", func(g *internal.Router) {
		g.Get("", internal.View("admin/index"))
		g.Group("users", func(u *internal.Router) {
			u.Get("/:id", internal.Controller("admin/users/show"))
		})
	})

	templates := make([]string, 0, r.Len())
	for _, rule := range r.Rules() {
		templates = append(templates, rule.Template())
	}
	require.Equal(t, []string{"admin", "admin/users/:id"}, templates)

	m := r.MustBuild()
	require.True(t, m.Check(get("/admin/users/9", "")).Matched)
}

func TestRouter_GlobalPatterns(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter(internal.WithGlobalPattern("id", `\d+`))
	r.Get("a/:id", internal.Controller("a"))
	r.Get("b/:id", internal.Controller("b")).Pattern("id", `[a-z]+`)
	r.Pattern("slug", `[a-z-]+`)
	r.Get("c/:slug", internal.Controller("c"))
	m := r.MustBuild()

	require.True(t, m.Check(get("/a/1", "")).Matched)
	require.False(t, m.Check(get("/a/x", "")).Matched)
	require.True(t, m.Check(get("/b/x", "")).Matched)
	require.False(t, m.Check(get("/b/1", "")).Matched)
	require.True(t, m.Check(get("/c/a-b", "")).Matched)
	require.False(t, m.Check(get("/c/a_b", "")).Matched)

	require.Equal(t, map[string]string{"id": `\d+`}, r.Rules()[0].Constraints())
	require.Equal(t, map[string]string{"id": `[a-z]+`}, r.Rules()[1].Constraints())
}

func TestRouter_BuildErrors(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("ok/:id", internal.Controller("ok"))
	r.Get("bad/[:id", internal.Controller("bad"))
	r.Get("dup/:id/:id", internal.Controller("dup"))
	r.Get("order/[:a]/:b", internal.Controller("order"))
	r.Get("re/:id", internal.Controller("re")).Pattern("id", `(`)

	m, err := r.Build()
	require.Nil(t, m)
	require.ErrorIs(t, err, pattern.ErrInvalidTemplate)
	require.ErrorIs(t, err, pattern.ErrUnbalancedBrackets)
	require.ErrorIs(t, err, pattern.ErrDuplicateParam)
	require.ErrorIs(t, err, pattern.ErrRequiredAfterOptional)
	require.ErrorIs(t, err, pattern.ErrInvalidConstraint)
}

func TestRouter_BuildRejectsDuplicateNamesAndDomains(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("a", internal.View("a")).As("page")
	r.Get("b", internal.View("b")).As("page")
	r.Domain("*.", func(d *internal.Router) {
		d.Get("c", internal.View("c"))
	})

	_, err := r.Build()
	require.ErrorIs(t, err, internal.ErrDuplicateName)
	require.ErrorIs(t, err, internal.ErrInvalidDomain)
}

func TestRouter_LockedAfterBuild(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("a", internal.View("a"))
	r.MustBuild()

	require.True(t, r.Locked())
	require.PanicsWithValue(t, internal.ErrRouterLocked, func() {
		r.Get("b", internal.View("b"))
	})
	require.Panics(t, func() { r.Pattern("id", `\d+`) })
	require.Panics(t, func() { r.Rules()[0].Pattern("x", "y") })
}

func TestRouter_ToArrayReplay(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter(internal.WithRootDomain("example.com"), internal.WithGlobalPattern("id", `\d+`))
	r.Get("blog/:id", internal.Controller("blog/read/:id")).As("blog.read")
	r.Domain("api", func(api *internal.Router) {
		api.Add(internal.MethodGet|internal.MethodPost, "users/[:id]", internal.Callback("users"))
	})

	defs := r.ToArray()
	require.Equal(t, []internal.Definition{
		{
			Name:        "blog.read",
			Method:      "GET",
			Template:    "blog/:id",
			Target:      internal.Controller("blog/read/:id"),
			Constraints: map[string]string{"id": `\d+`},
		},
		{
			Method:      "GET|POST",
			Template:    "users/[:id]",
			Target:      internal.Callback("users"),
			Domain:      "api",
			Constraints: map[string]string{"id": `\d+`},
		},
	}, defs)

	replay := internal.NewRouter(internal.WithRootDomain("example.com"))
	require.NoError(t, replay.Register(defs...))
	require.Equal(t, defs, replay.ToArray())

	a, b := r.MustBuild(), replay.MustBuild()
	for _, req := range []internal.Request{
		get("/blog/1", ""),
		get("/blog/x", ""),
		get("/users", "api.example.com"),
		{Method: "POST", Path: "/users/3", Host: "api.example.com"},
		{Method: "PUT", Path: "/users/3", Host: "api.example.com"},
	} {
		ra, rb := a.Check(req), b.Check(req)
		require.Equal(t, ra.Matched, rb.Matched, req)
		require.Equal(t, ra.Params, rb.Params, req)
		require.Equal(t, ra.MethodMismatch, rb.MethodMismatch, req)
	}
}

func TestRouter_RegisterErrors(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	err := r.Register(
		internal.Definition{Method: "FETCH", Template: "a", Target: internal.View("a")},
		internal.Definition{Method: "GET", Template: "b", Target: internal.Target{Kind: "lambda", Value: "x"}},
		internal.Definition{Method: "GET", Template: "c", Target: internal.View("c")},
	)
	require.ErrorIs(t, err, internal.ErrInvalidMethod)
	require.ErrorIs(t, err, internal.ErrInvalidTarget)
	require.Equal(t, 1, r.Len())
}

func TestMatcher_URL(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter()
	r.Get("blog/:id/[:slug]", internal.Controller("blog/read")).Pattern("id", `\d+`).As("blog.read")
	m := r.MustBuild()

	url, err := m.URL("blog.read", map[string]string{"id": "3", "slug": "intro"})
	require.NoError(t, err)
	require.Equal(t, "/blog/3/intro", url)

	_, err = m.URL("nope", nil)
	require.ErrorIs(t, err, internal.ErrUnknownRoute)

	rule, ok := m.Lookup("blog.read")
	require.True(t, ok)
	require.Equal(t, "blog/:id/[:slug]", rule.Template())
}

func TestMatcher_Concurrent(t *testing.T) {
	t.Parallel()

	r := internal.NewRouter(internal.WithRootDomain("example.com"))
	r.Get("home/[:id]/[:name]", internal.Controller("index/index/:id"))
	r.Domain("api", func(api *internal.Router) {
		api.Get("users/:id", internal.Callback("users"))
	})
	m := r.MustBuild()

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				res := m.Check(get("/home/1/bob", ""))
				assert.True(t, res.Matched)
				assert.Equal(t, map[string]string{"id": "1", "name": "bob"}, res.Params)
				res.Params["id"] = "mutated"
				return
			}
			res := m.Check(get("/users/7", "api.example.com"))
			assert.True(t, res.Matched)
			assert.Equal(t, "7", res.Params["id"])
		}()
	}
	wg.Wait()
}
