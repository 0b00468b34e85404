// Package internal implements the pathway route engine.
//
// Rules are registered on a Router at bootstrap. Build compiles every rule
// into an anchored regular expression, locks the router and returns an
// immutable Matcher that resolves (method, path, host) to the first rule
// that accepts it.
//
//	r := internal.NewRouter(internal.WithRootDomain("example.com"))
//	r.Get("blog/:id", internal.Controller("blog/read/:id")).Pattern("id", `\d+`)
//	r.Get("home/[:id]/[:name]", internal.Controller("index/index/:id"))
//	r.Domain("api", func(api *internal.Router) {
//	    api.Any("users/<id?>", internal.Callback("users"))
//	})
//
//	m, err := r.Build()
//	if err != nil {
//	    return err
//	}
//	res := m.Check(internal.Request{Method: "GET", Path: "/blog/42", Host: "example.com"})
//	// res.Matched == true, res.Params == map[string]string{"id": "42"}
//
// # Precedence
//
// Rules are evaluated in registration order and the first match wins.
// Exactly one partition is evaluated per request: the rules of the domain
// scope owning the host, or the rules registered without a domain when no
// scope owns it. Exact hosts take precedence over wildcards.
//
// # Caching
//
// BuildCache serializes the ordered rule list with each compiled
// expression. LoadCache replays it and refuses blobs whose expressions no
// longer match what the compiler produces. RouteCache stores blobs in a
// pkg/blobstore backend.
//
// See the pathway package documentation for the public API.
package internal
