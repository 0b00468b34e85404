package blobstore

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("blobstore: blob not found")

	// ErrInvalidKey is returned for empty keys or keys escaping the store root.
	ErrInvalidKey = errors.New("blobstore: invalid key")

	// ErrInvalidConfig is returned when a backend is misconfigured.
	ErrInvalidConfig = errors.New("blobstore: invalid configuration")

	// ErrWriteFailed is returned when a backend fails to persist a blob.
	ErrWriteFailed = errors.New("blobstore: write failed")
)

// Store persists blobs under keys.
type Store interface {
	// Get returns the blob stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// validateKey rejects keys that cannot be mapped onto every backend.
// Keys are "/"-separated; empty, "." and ".." elements are not allowed.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for part := range strings.SplitSeq(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// joinKey prefixes key with prefix using sep.
func joinKey(prefix, sep, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + sep + key
}
