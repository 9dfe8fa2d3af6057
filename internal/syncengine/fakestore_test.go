package syncengine

import (
	"context"
	"io"
	"sync"

	"github.com/jeanbmar/s3sync/internal/store"
)

// fakeObject is one entry in fakeStore's in-memory bucket.
type fakeObject struct {
	data         []byte
	lastModified int64
}

// fakeStore is an in-memory store.Client, keyed by bucket/key, sufficient
// to exercise the orchestrator without any network dependency.
type fakeStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]fakeObject
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: map[string]map[string]fakeObject{}}
}

func (s *fakeStore) put(bucket, key string, data []byte, mtime int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string]fakeObject{}
	}

	s.buckets[bucket][key] = fakeObject{data: data, lastModified: mtime}
}

func (s *fakeStore) ListPage(_ context.Context, bucket, prefix, _ string) (store.ListPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var page store.ListPage

	for key, obj := range s.buckets[bucket] {
		if prefix != "" && !hasPrefix(key, prefix) {
			continue
		}

		page.Objects = append(page.Objects, store.ListedObject{Key: key, Size: int64(len(obj.data)), LastModified: obj.lastModified})
	}

	return page, nil
}

func hasPrefix(key, prefix string) bool {
	return len(key) >= len(prefix) && key[:len(prefix)] == prefix
}

func (s *fakeStore) Get(_ context.Context, bucket, key string, w io.Writer) (int64, error) {
	s.mu.Lock()
	obj := s.buckets[bucket][key]
	s.mu.Unlock()

	n, err := w.Write(obj.data)

	return int64(n), err
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, _ store.PutInput) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.put(bucket, key, data, 0)

	return nil
}

func (s *fakeStore) Copy(_ context.Context, srcBucket, srcKey, dstBucket, dstKey string, _ store.CopyInput) error {
	s.mu.Lock()
	obj := s.buckets[srcBucket][srcKey]
	s.mu.Unlock()

	s.put(dstBucket, dstKey, obj.data, obj.lastModified)

	return nil
}

func (s *fakeStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets[bucket], key)

	return nil
}

func (s *fakeStore) DeleteBatch(ctx context.Context, bucket string, keys []string) error {
	for _, k := range keys {
		if err := s.Delete(ctx, bucket, k); err != nil {
			return err
		}
	}

	return nil
}
