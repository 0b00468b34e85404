// Package pattern compiles route templates into anchored regular expressions.
//
// A template is a "/"-delimited list of segments:
//
//   - "home" is a literal segment, matched verbatim and case-sensitively
//   - ":id" and "<id>" are required dynamic segments bound to parameter "id"
//   - "[:id]" is an optional dynamic segment; brackets may also wrap a
//     trailing run of segments: "[:year/:month]"
//   - "<id?>" is shorthand for "[<id>]"
//
// Once a segment is optional every following segment must be optional too.
// Optional segments form a closed prefix run: "home/[:id]/[:name]" matches
// "home", "home/1" and "home/1/admin", never "home//admin".
//
// # Compiling
//
//	expr, err := pattern.Compile("blog/:year/[:slug]", map[string]string{
//	    "year": `\d{4}`,
//	})
//	if err != nil {
//	    return err // malformed template, fail at bootstrap
//	}
//
//	params, ok := expr.Match("blog/2024/hello")
//	// ok = true, params = {"year": "2024", "slug": "hello"}
//
// The emitted expression for the example above is:
//
//	^blog/(?P<year>\d{4})(?:/(?P<slug>[\w]+))?$
//
// Parameters without a constraint use [DefaultFragment].
//
// # Constraints
//
// Constraint fragments are inserted into the expression unescaped. They are
// trusted configuration written next to the route definitions and must never
// be taken from request data.
//
// # Reverse building
//
// [Expression.Build] turns parameters back into a path, validating every
// value against its constraint:
//
//	path, err := expr.Build(map[string]string{"year": "2024"})
//	// path = "blog/2024"
//
// # Errors
//
// Every template error wraps [ErrInvalidTemplate] together with a specific
// sentinel ([ErrUnbalancedBrackets], [ErrDuplicateParam], ...), so callers
// can test for either with [errors.Is].
package pattern
