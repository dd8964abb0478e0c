// Package interaction holds per-session like and bookmark state. Nothing here
// is persisted.
package interaction

import (
	"sort"
	"sync"

	"pokegram/feed/internal/domain"
)

type set map[string]struct{}

// toggle flips key and reports whether it is now a member.
func (s set) toggle(key string) bool {
	if _, ok := s[key]; ok {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

func (s set) has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s set) sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store is keyed by item name. Create one per session with NewStore and pass
// it to whatever handles user actions.
type Store struct {
	mu         sync.RWMutex
	liked      set
	bookmarked set
	selected   *domain.ItemRef
}

func NewStore() *Store {
	return &Store{
		liked:      make(set),
		bookmarked: make(set),
	}
}

func (s *Store) ToggleLiked(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liked.toggle(key)
}

func (s *Store) ToggleBookmarked(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookmarked.toggle(key)
}

func (s *Store) IsLiked(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked.has(key)
}

func (s *Store) IsBookmarked(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookmarked.has(key)
}

func (s *Store) Liked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked.sorted()
}

func (s *Store) Bookmarked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookmarked.sorted()
}

// Select records the item currently opened by the user.
func (s *Store) Select(ref domain.ItemRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &ref
}

// Selected returns the opened item, if any.
func (s *Store) Selected() (domain.ItemRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return domain.ItemRef{}, false
	}
	return *s.selected, true
}
