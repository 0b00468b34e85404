package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a readiness check for the cache store. A failed
// PING reports the server address so /readyz points at the broken store.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	addr := address(client)
	return func(ctx context.Context) error {
		if client == nil {
			return fmt.Errorf("%w: %w", ErrNotReady, ErrNilClient)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrNotReady, addr, err)
		}
		return nil
	}
}

// address names the server behind client for error messages.
func address(client redis.UniversalClient) string {
	if c, ok := client.(*redis.Client); ok {
		return c.Options().Addr
	}
	return "cluster"
}
