// Package playlists is the playlist state container: user-authored playlists,
// directory-derived auto playlists, and the current selection. The
// reconciliation engine treats the selected playlist as a read-only input.
package playlists

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Service owns the playlists and the selection. Mutations invoke the change
// callback; consumers re-read the selected playlist and recompute.
type Service struct {
	mu       sync.RWMutex
	list     []collection.Playlist
	selected string // playlist ID, empty when nothing selected
	onChange func()
}

// NewService creates an empty playlist container.
func NewService() *Service {
	return &Service{}
}

// OnChange registers the callback invoked after every mutation.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Create adds an empty user playlist. Names are unique, case-insensitively,
// across user and auto-generated playlists.
func (s *Service) Create(name string) (collection.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return collection.Playlist{}, fmt.Errorf("playlist name is required")
	}

	s.mu.Lock()
	if s.findByNameLocked(name) >= 0 {
		s.mu.Unlock()
		return collection.Playlist{}, fmt.Errorf("playlist name already in use: %s", name)
	}
	p := collection.Playlist{
		ID:   uuid.New().String(),
		Name: name,
	}
	s.list = append(s.list, p)
	s.mu.Unlock()

	s.notify()
	return p, nil
}

// Rename changes a user playlist's name, keeping names unique.
func (s *Service) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("playlist name is required")
	}

	s.mu.Lock()
	idx := s.findByIDLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("playlist not found: %s", id)
	}
	if s.list[idx].AutoGenerated {
		s.mu.Unlock()
		return fmt.Errorf("auto-generated playlists cannot be renamed")
	}
	if other := s.findByNameLocked(name); other >= 0 && other != idx {
		s.mu.Unlock()
		return fmt.Errorf("playlist name already in use: %s", name)
	}
	s.list[idx].Name = name
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove deletes a playlist, deselecting it if selected.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	idx := s.findByIDLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("playlist not found: %s", id)
	}
	s.list = append(s.list[:idx], s.list[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddTracks appends references to a user playlist.
func (s *Service) AddTracks(id string, refs []collection.PlaylistTrack) error {
	s.mu.Lock()
	idx := s.findByIDLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("playlist not found: %s", id)
	}
	if s.list[idx].AutoGenerated {
		s.mu.Unlock()
		return fmt.Errorf("auto-generated playlists cannot be edited")
	}
	s.list[idx].Tracks = append(s.list[idx].Tracks, refs...)
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemoveTrack removes the reference at the given index from a user playlist.
func (s *Service) RemoveTrack(id string, index int) error {
	s.mu.Lock()
	idx := s.findByIDLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("playlist not found: %s", id)
	}
	if s.list[idx].AutoGenerated {
		s.mu.Unlock()
		return fmt.Errorf("auto-generated playlists cannot be edited")
	}
	tracks := s.list[idx].Tracks
	if index < 0 || index >= len(tracks) {
		s.mu.Unlock()
		return fmt.Errorf("track index out of range: %d", index)
	}
	s.list[idx].Tracks = append(tracks[:index], tracks[index+1:]...)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Select marks a playlist as the selected one.
func (s *Service) Select(id string) error {
	s.mu.Lock()
	if s.findByIDLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("playlist not found: %s", id)
	}
	s.selected = id
	s.mu.Unlock()

	s.notify()
	return nil
}

// Deselect returns to the plain library view.
func (s *Service) Deselect() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()

	s.notify()
}

// Selected returns a deep copy of the selected playlist, or nil. The copy is
// the immutable snapshot one reconciliation pass works on.
func (s *Service) Selected() *collection.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findByIDLocked(s.selected)
	if idx < 0 {
		return nil
	}
	p := copyPlaylist(s.list[idx])
	return &p
}

// CheckSelected compares a previously used snapshot against the authoritative
// copy and reports whether they diverged. The host uses this to force a fresh
// pass and schedule persistence when the selection went stale.
func (s *Service) CheckSelected(lastUsed *collection.Playlist) bool {
	current := s.Selected()
	if current == nil || lastUsed == nil {
		return (current == nil) != (lastUsed == nil)
	}
	return !reflect.DeepEqual(*current, *lastUsed)
}

// ReplaceAutoGenerated swaps in a regenerated set of directory playlists
// without touching user playlists. A selected auto playlist that disappeared
// is deselected.
func (s *Service) ReplaceAutoGenerated(generated []collection.Playlist) {
	s.mu.Lock()
	kept := make([]collection.Playlist, 0, len(s.list)+len(generated))
	for _, p := range s.list {
		if !p.AutoGenerated {
			kept = append(kept, p)
		}
	}
	kept = append(kept, generated...)
	s.list = kept

	if s.selected != "" && s.findByIDLocked(s.selected) < 0 {
		s.selected = ""
	}
	s.mu.Unlock()

	s.notify()
}

// All returns deep copies of every playlist, in order.
func (s *Service) All() []collection.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]collection.Playlist, 0, len(s.list))
	for _, p := range s.list {
		out = append(out, copyPlaylist(p))
	}
	return out
}

// UserPlaylists returns deep copies of the user-authored playlists only;
// auto-generated ones are rederived, not persisted.
func (s *Service) UserPlaylists() []collection.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []collection.Playlist
	for _, p := range s.list {
		if !p.AutoGenerated {
			out = append(out, copyPlaylist(p))
		}
	}
	return out
}

// Restore replaces all playlists with persisted ones.
func (s *Service) Restore(list []collection.Playlist) {
	s.mu.Lock()
	s.list = make([]collection.Playlist, 0, len(list))
	for _, p := range list {
		s.list = append(s.list, copyPlaylist(p))
	}
	if s.selected != "" && s.findByIDLocked(s.selected) < 0 {
		s.selected = ""
	}
	s.mu.Unlock()

	s.notify()
}

func (s *Service) findByIDLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.list {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) findByNameLocked(name string) int {
	for i, p := range s.list {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

func (s *Service) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()

	if fn != nil {
		fn()
	}
}

func copyPlaylist(p collection.Playlist) collection.Playlist {
	p.Tracks = append([]collection.PlaylistTrack(nil), p.Tracks...)
	return p
}
