// Package memory keeps slots in process memory. It backs tests and the "memory" driver.
package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type slotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewSlotStore returns an empty in-memory slot store.
func NewSlotStore() repository.SlotStore {
	return &slotStore{slots: make(map[string][]byte)}
}

func (s *slotStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.slots[key]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), value...), nil
}

func (s *slotStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = append([]byte(nil), value...)
	return nil
}

func (s *slotStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}
