// Package pathway is a rule-based URL routing engine.
//
// Applications register rules at bootstrap. Each rule pairs a URL template
// with an HTTP method set, a dispatch target and optional per-parameter
// regex constraints. Building the router compiles every template into an
// anchored regular expression and returns an immutable [Matcher] that is
// safe for concurrent use.
//
// # Templates
//
// A template is a "/"-separated list of segments:
//
//	blog/:id              required parameter, default fragment [\w]+
//	blog/<id>             same, angle-bracket form
//	home/[:id]/[:name]    optional trailing parameters
//	users/<id?>           optional, angle-bracket form
//
// A parameter fills its whole segment; "files/:name.:ext" is rejected.
// Optional segments may only be followed by other optional segments.
// Constraints replace the default fragment:
//
//	r.Get("blog/:id", pathway.Controller("blog/read/:id")).Pattern("id", `\d+`)
//
// # Quick Start
//
//	r := pathway.New(pathway.WithRootDomain("example.com"))
//	r.Get("blog/:id", pathway.Controller("blog/read/:id")).Pattern("id", `\d+`).As("blog.read")
//	r.Post("blog", pathway.Controller("blog/create"))
//	r.Domain("api", func(api *pathway.Router) {
//	    api.Any("users/<id?>", pathway.Callback("users"))
//	})
//
//	m, err := r.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := m.Check(pathway.Request{Method: "GET", Path: "/blog/42", Host: "example.com"})
//	// res.Matched, res.Params["id"] == "42"
//
// # Precedence
//
// Rules are evaluated in registration order and the first match wins.
// The request host selects exactly one partition: the rules of the domain
// scope owning it, or the unscoped rules. An exact host beats a wildcard
// and a longer wildcard beats a shorter one. A bare label such as "api"
// expands under the root domain.
//
// When a path matches but the method does not, the result reports
// MethodMismatch and [Handler] answers 405 with an Allow header.
//
// # Definitions file
//
// Rules can be loaded from YAML with [LoadDefinitions]:
//
//	root_domain: example.com
//	patterns:
//	  id: '\d+'
//	routes:
//	  - name: blog.read
//	    method: GET
//	    template: blog/:id
//	    target: controller:blog/read/:id
//	domains:
//	  - host: api
//	    routes:
//	      - template: users/<id?>
//	        target: {kind: callback, value: users}
//
// # Caching
//
// [BuildCache] serializes the ordered rules with their compiled
// expressions. [LoadCache] replays them and refuses blobs whose checksum,
// version or expressions do not match. [RouteCache] keeps blobs in a
// pkg/blobstore backend (memory, file, Redis or S3) and collapses
// concurrent warm-ups. Warm serves the stored blob only while it holds
// the rules define registers; edited definitions replace it:
//
//	cache := pathway.NewRouteCache(store, pathway.WithCacheLogger(log))
//	m, err := cache.Warm(ctx, defineRoutes)
//
// # HTTP
//
// [NewHandler] adapts a Matcher to net/http. A [Dispatcher] receives the
// [Resolution]; [KindDispatcher] routes by target kind:
//
//	h := pathway.NewHandler(m, pathway.KindDispatcher{
//	    pathway.KindController: controllers,
//	    pathway.KindRedirect:   pathway.RedirectDispatcher(http.StatusFound),
//	}, pathway.WithHandlerLogger(log))
//
//	err := pathway.Serve(ctx, h, pathway.Address(":8080"))
package pathway
