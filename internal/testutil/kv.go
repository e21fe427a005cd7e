package testutil

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alexanderramin/atelier/internal/kv"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// NewMemoryKV returns an empty in-memory key space.
func NewMemoryKV() *kv.MemoryStore {
	return kv.NewMemoryStore()
}

// FailingKV wraps a Store and returns Err from the Nth Put (counted from 1).
// Every other call passes through, so the writes before the failure stick.
type FailingKV struct {
	kv.Store
	FailOn int
	Err    error

	mu   sync.Mutex
	puts int
	keys []string
}

func (f *FailingKV) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.puts++
	n := f.puts
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if n == f.FailOn {
		return f.Err
	}
	return f.Store.Put(ctx, key, value)
}

// PutKeys returns the keys passed to Put so far, in call order, including
// the one that failed.
func (f *FailingKV) PutKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

// NewFakeS3Server starts an in-memory gofakes3 server and returns its URL.
// The server stops when the test completes.
func NewFakeS3Server(t testing.TB) string {
	t.Helper()
	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)
	return ts.URL
}

// NewFakeS3Store returns a kv.S3Store pointed at a freshly created bucket on
// a new gofakes3 server.
func NewFakeS3Store(t testing.TB, bucket string) *kv.S3Store {
	t.Helper()

	ctx := context.Background()
	store, err := kv.NewS3Store(ctx, kv.S3Config{
		Bucket:          bucket,
		Prefix:          "atelier/",
		Region:          "us-east-1",
		Endpoint:        NewFakeS3Server(t),
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 store: %v", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create test bucket: %v", err)
	}
	return store
}
