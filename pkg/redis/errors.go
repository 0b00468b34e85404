package redis

import "errors"

// Errors returned while opening or probing the cache store connection.
var (
	ErrEmptyURL    = errors.New("redis: empty cache store URL")
	ErrInvalidURL  = errors.New("redis: cache store URL must be redis:// or rediss://")
	ErrUnreachable = errors.New("redis: cache store unreachable")
	ErrNotReady    = errors.New("redis: cache store not ready")
	ErrNilClient   = errors.New("redis: no cache store client")
)
