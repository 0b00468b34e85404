// Package health provides liveness and readiness endpoints for the route
// server.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] in parallel and answers
// 503 when any fails. A [Gate] turns "routes are warmed" into a check:
//
//	var ready health.Gate
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"routes": ready.Check(),
//		"redis":  redis.Healthcheck(client),
//	}, health.WithLogger(log)))
//
//	m, err := cache.Warm(ctx, define)
//	...
//	ready.Open()
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "routes": {"status": "healthy", "duration": "1µs"},
//	    "redis": {"status": "unhealthy", "error": "connection refused", "duration": "2ms"}
//	  }
//	}
package health
