package blobstore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/pkg/blobstore"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	mu      sync.Mutex
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3(t *testing.T) {
	t.Parallel()

	t.Run("store contract", func(t *testing.T) {
		t.Parallel()
		exerciseStore(t, blobstore.NewS3WithClient(newFakeS3(), "bucket", ""))
	})

	t.Run("prefix applied to object keys", func(t *testing.T) {
		t.Parallel()

		client := newFakeS3()
		store := blobstore.NewS3WithClient(client, "bucket", "deploy")

		require.NoError(t, store.Put(context.Background(), "routes.json", []byte("{}")))
		require.Contains(t, client.objects, "bucket/deploy/routes.json")
	})

	t.Run("write failure wrapped", func(t *testing.T) {
		t.Parallel()

		client := newFakeS3()
		client.putErr = errors.New("boom")
		store := blobstore.NewS3WithClient(client, "bucket", "")

		err := store.Put(context.Background(), "k", []byte("x"))
		require.ErrorIs(t, err, blobstore.ErrWriteFailed)
	})
}

func TestNewS3(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		store, err := blobstore.NewS3(blobstore.S3Config{
			Bucket:    "routes",
			AccessKey: "key",
			SecretKey: "secret",
			Endpoint:  "http://localhost:9000",
			PathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		store, err := blobstore.NewS3(blobstore.S3Config{})
		require.ErrorIs(t, err, blobstore.ErrInvalidConfig)
		require.Nil(t, store)
	})
}
