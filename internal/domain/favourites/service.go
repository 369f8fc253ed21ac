// Package favourites holds the user's favourite references. Favourites point
// at tracks by artist and title only, so a favourite can exist before any
// matching track has been scanned.
package favourites

import (
	"strings"
	"sync"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Service is the favourites store. Every mutation invokes the change callback
// with a fresh snapshot; the engine only ever reads snapshots.
type Service struct {
	mu       sync.RWMutex
	list     []collection.Favourite
	onChange func([]collection.Favourite)
}

// NewService creates an empty favourites store.
func NewService() *Service {
	return &Service{}
}

// OnChange registers the callback invoked after every mutation.
func (s *Service) OnChange(fn func([]collection.Favourite)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Toggle adds the reference when absent and removes it when present,
// matching case-insensitively. It returns true when the reference was added.
// This is the favourites-editing boundary, so inputs are trimmed here.
func (s *Service) Toggle(artist, title string) bool {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)

	s.mu.Lock()
	added := true
	for i, f := range s.list {
		if strings.EqualFold(f.Artist, artist) && strings.EqualFold(f.Title, title) {
			s.list = append(s.list[:i], s.list[i+1:]...)
			added = false
			break
		}
	}
	if added {
		s.list = append(s.list, collection.Favourite{Artist: artist, Title: title})
	}
	s.mu.Unlock()

	s.notify()
	return added
}

// Contains reports whether a reference is favourited.
func (s *Service) Contains(artist, title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.list {
		if strings.EqualFold(f.Artist, artist) && strings.EqualFold(f.Title, title) {
			return true
		}
	}
	return false
}

// All returns a snapshot of the favourites in insertion order.
func (s *Service) All() []collection.Favourite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]collection.Favourite(nil), s.list...)
}

// Restore replaces the store with persisted favourites.
func (s *Service) Restore(list []collection.Favourite) {
	s.mu.Lock()
	s.list = append([]collection.Favourite(nil), list...)
	s.mu.Unlock()

	s.notify()
}

func (s *Service) notify() {
	s.mu.RLock()
	fn := s.onChange
	snap := append([]collection.Favourite(nil), s.list...)
	s.mu.RUnlock()

	if fn != nil {
		fn(snap)
	}
}
