// Package player tracks what is currently playing. The queue itself lives on
// the client; the backend only needs the now-playing reference to annotate
// the collection.
package player

import (
	"sync"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Status constants for playback state.
const (
	StatusPlay  = "play"
	StatusPause = "pause"
	StatusStop  = "stop"
)

// State holds the now-playing reference and playback status.
// It is safe for concurrent access.
type State struct {
	mu         sync.RWMutex
	status     string
	nowPlaying *collection.IdentifiedTrack
	onChange   func(*collection.IdentifiedTrack)
}

// NewState creates a stopped player state.
func NewState() *State {
	return &State{status: StatusStop}
}

// OnChange registers the callback invoked with the new now-playing reference
// whenever it changes.
func (s *State) OnChange(fn func(*collection.IdentifiedTrack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Play sets the now-playing reference and marks playback active.
func (s *State) Play(it collection.IdentifiedTrack) {
	s.mu.Lock()
	s.status = StatusPlay
	s.nowPlaying = &it
	s.mu.Unlock()

	s.notify()
}

// Pause keeps the now-playing reference but marks playback paused.
func (s *State) Pause() {
	s.mu.Lock()
	s.status = StatusPause
	s.mu.Unlock()

	s.notify()
}

// Stop clears the now-playing reference.
func (s *State) Stop() {
	s.mu.Lock()
	s.status = StatusStop
	s.nowPlaying = nil
	s.mu.Unlock()

	s.notify()
}

// Status returns the playback status.
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// NowPlaying returns a copy of the now-playing reference, or nil when
// stopped.
func (s *State) NowPlaying() *collection.IdentifiedTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// ToJSON returns the state in the shape pushed to clients.
func (s *State) ToJSON() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"status": s.status,
	}
	if s.nowPlaying != nil {
		out["nowPlaying"] = *s.nowPlaying
	}
	return out
}

func (s *State) copyLocked() *collection.IdentifiedTrack {
	if s.nowPlaying == nil {
		return nil
	}
	cp := *s.nowPlaying
	return &cp
}

func (s *State) notify() {
	s.mu.RLock()
	fn := s.onChange
	np := s.copyLocked()
	s.mu.RUnlock()

	if fn != nil {
		fn(np)
	}
}
