// Package storage provides the durable key-value store used for client-side
// state that must survive restarts, in the manner of browser local storage.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by GetItem when the key has never been set or was removed.
var ErrKeyNotFound = errors.New("storage: key not found")

type Storage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns a process-local Storage. Contents are lost on exit.
func NewMemoryStorage() Storage {
	return &memoryStorage{items: make(map[string]string)}
}

func (s *memoryStorage) GetItem(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *memoryStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

func (s *memoryStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}
