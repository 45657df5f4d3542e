package planstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore wraps another Store with a write-through LRU. Reads hit the
// cache first; List always goes to the backend since the cache holds only
// a subset.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Put(ctx context.Context, planID string, data []byte) error {
	if err := s.inner.Put(ctx, planID, data); err != nil {
		return err
	}
	s.cache.Add(planID, data)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, planID string) ([]byte, error) {
	if data, ok := s.cache.Get(planID); ok {
		return data, nil
	}
	data, err := s.inner.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(planID, data)
	return data, nil
}

func (s *CachedStore) List(ctx context.Context) ([][]byte, error) {
	return s.inner.List(ctx)
}
