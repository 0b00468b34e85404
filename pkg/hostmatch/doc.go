// Package hostmatch resolves request hosts against domain scope patterns.
//
// Three pattern forms are supported, with a single resolution policy:
//
//   - Exact: "api.example.com" matches only that host
//   - Wildcard: "*.example.com" matches any subdomain (foo.example.com,
//     bar.foo.example.com) but not the apex example.com
//   - Label: "api" (no dot) matches "api.<root>" when a root domain is
//     configured, and the literal host "api" otherwise
//
// Exact matches win over wildcards, and a more specific wildcard
// ("*.eu.example.com") wins over a broader one ("*.example.com"). Host
// matching is case-insensitive, ports are stripped, and internationalized
// names are compared in their ASCII (punycode) form.
//
// # Usage
//
//	set := hostmatch.NewSet("example.com")
//	api, _ := set.Add("api")             // api.example.com
//	tenants, _ := set.Add("*.example.com")
//
//	idx, ok := set.Lookup("API.example.com:8443") // idx == api
//
// # IPv6 Support
//
// IPv6 literals keep their brackets: "[::1]:8080" normalizes to "[::1]".
package hostmatch
