package storage

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore is an in-process Store used by tests and simulate mode.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal value for key %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string, out any) error {
	s.mu.RLock()
	payload, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "unmarshal value for key %s", key)
	}
	return nil
}

func (s *MemoryStore) QueryByPrefix(_ context.Context, prefix string, predicate func(key string) bool) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte)
	for key, payload := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if predicate != nil && !predicate(key) {
			continue
		}
		result[key] = append([]byte(nil), payload...)
	}
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored keys. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
