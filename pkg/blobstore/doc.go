// Package blobstore persists opaque byte blobs under string keys.
//
// It backs the route cache: the compiled rule set is built once per
// deployment, written to a store, and read back by every instance at boot.
// All backends share the [Store] interface:
//
//   - [Memory] for tests and single-process tools
//   - [File] for a cache artifact shipped next to the binary
//   - [Redis] for fleets sharing one Redis instance
//   - [S3] for artifacts uploaded by CI to S3-compatible storage
//
// # Usage
//
//	store := blobstore.NewRedis(client,
//	    blobstore.WithPrefix("routes"),
//	    blobstore.WithTTL(24*time.Hour),
//	)
//
//	if err := store.Put(ctx, "v42", blob); err != nil {
//	    return err
//	}
//
//	blob, err := store.Get(ctx, "v42")
//	if errors.Is(err, blobstore.ErrNotFound) {
//	    // rebuild
//	}
//
// # Error Handling
//
// Every backend reports a missing key as [ErrNotFound] and a key that cannot
// be stored safely as [ErrInvalidKey]. Backend failures are wrapped, so
// callers test with [errors.Is].
package blobstore
