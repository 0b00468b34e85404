package internal

import (
	"log/slog"

	"github.com/dmitrymomot/pathway/pkg/logger"
)

// RouterOption configures a Router.
type RouterOption func(*routerOptions)

type routerOptions struct {
	logger     *slog.Logger
	patterns   map[string]string
	rootDomain string
}

func defaultRouterOptions() *routerOptions {
	return &routerOptions{
		logger:   logger.NewNope(),
		patterns: make(map[string]string),
	}
}

// WithRootDomain sets the domain that bare labels in domain scopes expand
// against: with root "example.com", the scope "api" serves "api.example.com".
func WithRootDomain(domain string) RouterOption {
	return func(o *routerOptions) {
		o.rootDomain = domain
	}
}

// WithLogger sets the logger used by the router and the matchers it builds.
func WithLogger(l *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithGlobalPattern sets a default fragment for a parameter name across
// all rules. A rule's own constraint wins.
func WithGlobalPattern(name, fragment string) RouterOption {
	return func(o *routerOptions) {
		o.patterns[name] = fragment
	}
}
