// Package redis opens the Redis connection backing the shared route cache.
//
// [Open] parses a redis:// or rediss:// URL, applies conservative pool and
// timeout settings and retries PING with a linear backoff until the server
// answers or the attempts run out:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//		return err
//	}
//	store := blobstore.NewRedis(client, blobstore.WithPrefix("pathway:"))
//
// [Healthcheck] adapts the client to a readiness check and [Close] to a
// server shutdown hook:
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//	internal.Serve(ctx, h, internal.ShutdownHook(redis.Close(client)))
//
// Open fails with [ErrEmptyURL], [ErrInvalidURL] or [ErrUnreachable];
// the readiness check fails with [ErrNotReady].
package redis
