package planstore

import (
	"context"
	"sync"
)

// MemoryStore keeps plans in process memory. It is the default backend for
// development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, planID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.plans[planID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, planID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.plans[planID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, 0, len(s.plans))
	for _, data := range s.plans {
		cp := make([]byte, len(data))
		copy(cp, data)
		out = append(out, cp)
	}
	return out, nil
}
