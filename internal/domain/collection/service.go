package collection

import "sync"

// Service holds the current engine input snapshot and the last computed
// collection. Every relevant state change replaces one piece of the snapshot
// and triggers a full recompute; the previous output is discarded wholesale.
// It is safe for concurrent access.
type Service struct {
	mu sync.RWMutex

	tracks     []Track
	enabled    map[SourceID]bool
	favourites []Favourite
	selected   *Playlist
	nowPlaying *IdentifiedTrack
	sortBy     SortKey
	sortDir    SortDirection
	selectedID string

	searchTerm     string
	favouritesOnly bool

	collection Collection
	onChange   func(Collection)
}

// NewService creates a collection service with default sort preferences.
func NewService() *Service {
	return &Service{
		sortBy:  SortByArtist,
		sortDir: SortAsc,
	}
}

// OnChange registers the callback invoked with the fresh collection after
// every recompute. Only one callback is held; the transport fans out.
func (s *Service) OnChange(fn func(Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Collection returns the last computed collection.
func (s *Service) Collection() Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

// NowPlayingIndex returns the IndexInList of the now-playing entry, for
// scroll-to-now-playing. The second result is false when nothing is playing.
func (s *Service) NowPlayingIndex() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.collection.Identified {
		if it.Identifiers.IsNowPlaying {
			return it.Identifiers.IndexInList, true
		}
	}
	return 0, false
}

// Queue returns the playable tracks of the harvested view, in order: missing
// placeholders and favourites-only-hidden entries are skipped. The queue-fill
// operation consumes this directly.
func (s *Service) Queue() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Track, 0, len(s.collection.Harvested))
	for _, it := range s.collection.Harvested {
		if it.Identifiers.IsMissing || it.Identifiers.IsFavouritesOnlyHidden {
			continue
		}
		out = append(out, it.Track)
	}
	return out
}

// SetTracks replaces the untouched library snapshot.
func (s *Service) SetTracks(tracks []Track) {
	s.update(func() { s.tracks = tracks })
}

// SetEnabledSources replaces the enabled-source set. A nil set enables all.
func (s *Service) SetEnabledSources(enabled map[SourceID]bool) {
	s.update(func() { s.enabled = enabled })
}

// SetFavourites replaces the favourites snapshot.
func (s *Service) SetFavourites(favourites []Favourite) {
	s.update(func() { s.favourites = favourites })
}

// SelectPlaylist sets the selected playlist; nil returns to the library view.
func (s *Service) SelectPlaylist(p *Playlist) {
	s.update(func() { s.selected = p })
}

// SetNowPlaying replaces the now-playing reference; nil clears it.
func (s *Service) SetNowPlaying(np *IdentifiedTrack) {
	s.update(func() { s.nowPlaying = np })
}

// SortPreferences returns the active sort key and direction.
func (s *Service) SortPreferences() (SortKey, SortDirection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy, s.sortDir
}

// SetSort replaces the sort preferences.
func (s *Service) SetSort(key SortKey, dir SortDirection) {
	s.update(func() {
		s.sortBy = key
		s.sortDir = dir
	})
}

// SetSelectedID marks the UI-selected entry.
func (s *Service) SetSelectedID(id string) {
	s.update(func() { s.selectedID = id })
}

// SetSearchTerm replaces the harvest search filter.
func (s *Service) SetSearchTerm(term string) {
	s.update(func() { s.searchTerm = term })
}

// SetFavouritesOnly toggles the favourites-only harvest filter.
func (s *Service) SetFavouritesOnly(on bool) {
	s.update(func() { s.favouritesOnly = on })
}

// Recompute forces a fresh pass without changing the snapshot. The playlist
// store calls this after a stale-selection check.
func (s *Service) Recompute() {
	s.update(func() {})
}

func (s *Service) update(apply func()) {
	s.mu.Lock()
	apply()
	s.recomputeLocked()
	c := s.collection
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(c)
	}
}

func (s *Service) recomputeLocked() {
	identified := Identify(Input{
		Tracks:           s.tracks,
		EnabledSourceIDs: s.enabled,
		Favourites:       s.favourites,
		SelectedPlaylist: s.selected,
		NowPlaying:       s.nowPlaying,
		SortBy:           s.sortBy,
		SortDirection:    s.sortDir,
		SelectedID:       s.selectedID,
	})

	s.collection = Collection{
		Untouched:  s.tracks,
		Identified: identified,
		Harvested:  Harvest(identified, s.searchTerm, s.favouritesOnly),
	}
}
