package blob

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wibisana/skimcache/pkg/failure"
)

// Compile-time interface check
var _ ObjectStore = (*MemoryStore)(nil)

type memObject struct {
	payload   []byte
	createdAt time.Time
}

// MemoryStore is a map-backed ObjectStore used by tests and by local
// serving without a bucket. Listing order is lexicographic by key and
// the continuation token is the last key of the previous page, which
// keeps pagination deterministic.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock injects the clock assigning creation times,
// so tests can control listing timestamps.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memObject),
		now:     now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, payload []byte) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.objects[key] = memObject{payload: stored, createdAt: s.now()}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, failure.ClassifiedError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, false, nil
	}
	payload := make([]byte, len(obj.payload))
	copy(payload, obj.payload)
	return payload, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return false, nil
	}
	delete(s.objects, key)
	return true, nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, failure.ClassifiedError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStore) List(ctx context.Context, pageSize int, token string) (Page, failure.ClassifiedError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pageSize < 1 {
		pageSize = 1
	}

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if key > token {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var entries []ObjectInfo
	var nextToken string
	for i, key := range keys {
		if i == pageSize {
			nextToken = entries[len(entries)-1].Key()
			break
		}
		entries = append(entries, NewObjectInfo(key, s.objects[key].createdAt))
	}
	return NewPage(entries, nextToken), nil
}
