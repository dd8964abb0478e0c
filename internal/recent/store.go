package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pokegram/feed/internal/domain"
	"pokegram/feed/internal/storage"

	log "github.com/sirupsen/logrus"
)

const (
	MaxEntries = 10
	DefaultKey = "recentSearches"
)

// Store is a most-recently-used list of search selections, newest first,
// unique by id. Every mutation rewrites the whole list under one storage key.
type Store struct {
	storage storage.Storage
	key     string

	mu      sync.Mutex
	entries []domain.RecentSearchEntry
}

func NewStore(s storage.Storage, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{storage: s, key: key}
}

// Load replaces the in-memory list with the persisted one. Missing or
// unreadable data yields an empty list; errors are logged, never returned.
func (s *Store) Load(ctx context.Context) []domain.RecentSearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.read(ctx)
	return s.snapshot()
}

func (s *Store) read(ctx context.Context) []domain.RecentSearchEntry {
	raw, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			log.Warnf("⚠️ Failed to read recent searches: %v", err)
		}
		return nil
	}

	var entries []domain.RecentSearchEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Warnf("⚠️ Ignoring recent searches: %v", &domain.DeserializationError{Source: s.key, Err: err})
		return nil
	}

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// Record moves entry to the front, dropping any older entry with the same id
// and anything past MaxEntries.
func (s *Store) Record(ctx context.Context, entry domain.RecentSearchEntry) ([]domain.RecentSearchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]domain.RecentSearchEntry, 0, MaxEntries)
	updated = append(updated, entry)
	for _, e := range s.entries {
		if len(updated) == MaxEntries {
			break
		}
		if e.ID != entry.ID {
			updated = append(updated, e)
		}
	}

	if err := s.persist(ctx, updated); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

func (s *Store) Remove(ctx context.Context, id int) ([]domain.RecentSearchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]domain.RecentSearchEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.ID != id {
			updated = append(updated, e)
		}
	}

	if err := s.persist(ctx, updated); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Clear empties the list and deletes the stored key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	return nil
}

func (s *Store) Entries() []domain.RecentSearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// persist updates the in-memory list and writes it out. The in-memory list is
// updated even if the write fails.
func (s *Store) persist(ctx context.Context, entries []domain.RecentSearchEntry) error {
	s.entries = entries

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal recent searches: %w", err)
	}
	if err := s.storage.SetItem(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save recent searches: %w", err)
	}
	return nil
}

func (s *Store) snapshot() []domain.RecentSearchEntry {
	out := make([]domain.RecentSearchEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
