package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default single-process store. Expired records are
// discarded lazily on read; codes are short-lived so the map stays small.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]Record
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:   make(map[string]Record),
		now: time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	s.m[key] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.RLock()
	rec, ok := s.m[key]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false, nil
	}

	return rec, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}
