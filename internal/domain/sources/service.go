package sources

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Service is the source registry. It is safe for concurrent access; every
// mutation invokes the change callback with a fresh snapshot.
type Service struct {
	mu       sync.RWMutex
	order    []collection.SourceID
	byID     map[collection.SourceID]*Source
	onChange func([]Source)
}

// NewService creates an empty source registry.
func NewService() *Service {
	return &Service{
		byID: make(map[collection.SourceID]*Source),
	}
}

// OnChange registers the callback invoked after every mutation.
func (s *Service) OnChange(fn func([]Source)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Add registers a new enabled source and returns it.
func (s *Service) Add(name string, kind Kind, root string) (Source, error) {
	if name == "" {
		return Source{}, fmt.Errorf("source name is required")
	}
	if root == "" {
		return Source{}, fmt.Errorf("source root is required")
	}
	if kind != KindFilesystem && kind != KindMPD {
		return Source{}, fmt.Errorf("invalid source kind: %s", kind)
	}

	src := Source{
		ID:      collection.SourceID(uuid.New().String()),
		Name:    name,
		Kind:    kind,
		Root:    root,
		Enabled: true,
	}

	s.mu.Lock()
	s.order = append(s.order, src.ID)
	s.byID[src.ID] = &src
	s.mu.Unlock()

	s.notify()
	return src, nil
}

// Restore replaces the whole registry with persisted sources.
func (s *Service) Restore(list []Source) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.byID = make(map[collection.SourceID]*Source, len(list))
	for i := range list {
		src := list[i]
		s.order = append(s.order, src.ID)
		s.byID[src.ID] = &src
	}
	s.mu.Unlock()

	s.notify()
}

// Remove deletes a source.
func (s *Service) Remove(id collection.SourceID) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("source not found: %s", id)
	}
	delete(s.byID, id)
	for i, sid := range s.order {
		if sid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetEnabled toggles a source.
func (s *Service) SetEnabled(id collection.SourceID, enabled bool) error {
	s.mu.Lock()
	src, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("source not found: %s", id)
	}
	src.Enabled = enabled
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetError records the outcome of the last scan of a source. An empty string
// marks the source healthy.
func (s *Service) SetError(id collection.SourceID, errText string) {
	s.mu.Lock()
	if src, ok := s.byID[id]; ok {
		src.Err = errText
	}
	s.mu.Unlock()

	s.notify()
}

// All returns the sources in registration order.
func (s *Service) All() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// EnabledIDs returns the enabled-source set consumed by the engine.
func (s *Service) EnabledIDs() map[collection.SourceID]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[collection.SourceID]bool, len(s.byID))
	for id, src := range s.byID {
		if src.Enabled {
			out[id] = true
		}
	}
	return out
}

// ViableIDs returns the sources eligible for auto-generated playlists:
// enabled and not erroring, in registration order.
func (s *Service) ViableIDs() []collection.SourceID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]collection.SourceID, 0, len(s.order))
	for _, id := range s.order {
		if s.byID[id].Viable() {
			out = append(out, id)
		}
	}
	return out
}

func (s *Service) snapshotLocked() []Source {
	out := make([]Source, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *Service) notify() {
	s.mu.RLock()
	fn := s.onChange
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	if fn != nil {
		fn(snap)
	}
}
