package blobstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/pkg/blobstore"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store blobstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "routes/v1", []byte("first")))
	data, err := store.Get(ctx, "routes/v1")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), data)

	require.NoError(t, store.Put(ctx, "routes/v1", []byte("second")))
	data, err = store.Get(ctx, "routes/v1")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)

	require.NoError(t, store.Delete(ctx, "routes/v1"))
	_, err = store.Get(ctx, "routes/v1")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "routes/v1"), "deleting a missing key is not an error")

	for _, key := range []string{"", "/abs", "a//b", "../escape", "a/./b", `a\b`} {
		require.ErrorIs(t, store.Put(ctx, key, []byte("x")), blobstore.ErrInvalidKey, key)
		_, err := store.Get(ctx, key)
		require.ErrorIs(t, err, blobstore.ErrInvalidKey, key)
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("store contract", func(t *testing.T) {
		t.Parallel()
		exerciseStore(t, blobstore.NewMemory())
	})

	t.Run("copies buffers", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := blobstore.NewMemory()

		buf := []byte("abc")
		require.NoError(t, store.Put(ctx, "k", buf))
		buf[0] = 'x'

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), got)

		got[1] = 'y'
		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), again)
		require.Equal(t, 1, store.Len())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := blobstore.NewMemory()

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = store.Put(ctx, "shared", []byte("v"))
			}()
			go func() {
				defer wg.Done()
				_, _ = store.Get(ctx, "shared")
			}()
		}
		wg.Wait()

		data, err := store.Get(ctx, "shared")
		require.NoError(t, err)
		require.Equal(t, []byte("v"), data)
	})
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("store contract", func(t *testing.T) {
		t.Parallel()

		store, err := blobstore.NewFile(t.TempDir())
		require.NoError(t, err)
		exerciseStore(t, store)
	})

	t.Run("writes under root", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := blobstore.NewFile(dir)
		require.NoError(t, err)

		require.NoError(t, store.Put(context.Background(), "cache/routes.json", []byte("{}")))

		data, err := os.ReadFile(filepath.Join(dir, "cache", "routes.json"))
		require.NoError(t, err)
		require.Equal(t, []byte("{}"), data)

		entries, err := os.ReadDir(filepath.Join(dir, "cache"))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temporary files are cleaned up")
	})

	t.Run("empty dir rejected", func(t *testing.T) {
		t.Parallel()

		_, err := blobstore.NewFile("")
		require.ErrorIs(t, err, blobstore.ErrInvalidConfig)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		store, err := blobstore.NewFile(t.TempDir())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = store.Get(ctx, "k")
		require.True(t, errors.Is(err, context.Canceled))
	})
}
