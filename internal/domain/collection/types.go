// Package collection implements the track identification and playlist
// reconciliation engine: it folds the scanned library, the favourites set and
// an optionally selected playlist into one ordered, annotated track list.
package collection

import "fmt"

// SourceID identifies a scan source.
type SourceID string

// MissingSource is the sentinel source for synthesized placeholder tracks.
const MissingSource SourceID = "missing"

// MissingAlbum is the album marker used when a reference carries no album.
const MissingAlbum = "<missing>"

// Tags is the tag bundle read from a scanned file.
type Tags struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Album   string `json:"album"`
	Genre   string `json:"genre,omitempty"`
	Year    int    `json:"year,omitempty"`
	Disc    int    `json:"disc"`
	Nr      int    `json:"nr"`
	Picture string `json:"picture,omitempty"`
}

// Track is one immutable scanned-library entry. Tracks are created by the
// scanning side and never mutated here; a library update replaces the whole
// untouched slice.
type Track struct {
	ID       string   `json:"id"`
	SourceID SourceID `json:"sourceId"`
	Path     string   `json:"path"`
	Tags     Tags     `json:"tags"`
}

// Favourite is a user reference by artist and title only. The matching track
// may not exist in the library yet.
type Favourite struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// PlaylistTrack is a playlist entry, referencing a track by its tags rather
// than by ID.
type PlaylistTrack struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Album  string `json:"album"`
}

// Playlist is a named ordered sequence of playlist-track references.
// AutoGenerated marks playlists derived from directory structure; those keep
// following the active sort preference, while user playlists are manually
// ordered.
type Playlist struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	AutoGenerated bool            `json:"autoGenerated"`
	Tracks        []PlaylistTrack `json:"tracks"`
}

// Identifiers carries the per-pass derived flags of one identified track.
// The whole struct is recomputed on every reconciliation pass, never patched.
type Identifiers struct {
	IndexInPlaylist        *int `json:"indexInPlaylist,omitempty"`
	IsFavourite            bool `json:"isFavourite"`
	IsMissing              bool `json:"isMissing"`
	IsNowPlaying           bool `json:"isNowPlaying"`
	IsSelected             bool `json:"isSelected"`
	IsFavouritesOnlyHidden bool `json:"isFavouritesOnlyHidden"`
	IndexInList            int  `json:"indexInList"`
}

// IdentifiedTrack pairs Identifiers with either a real library track or a
// synthesized missing placeholder (IsMissing discriminates).
type IdentifiedTrack struct {
	Identifiers Identifiers `json:"identifiers"`
	Track       Track       `json:"track"`
}

// SortKey selects the tag field the sorter compares.
type SortKey string

const (
	SortByTitle         SortKey = "title"
	SortByArtist        SortKey = "artist"
	SortByAlbum         SortKey = "album"
	SortByPlaylistIndex SortKey = "playlistIndex"
)

// ParseSortKey validates a sort key coming in over the wire.
func ParseSortKey(v string) (SortKey, error) {
	switch SortKey(v) {
	case SortByTitle, SortByArtist, SortByAlbum, SortByPlaylistIndex:
		return SortKey(v), nil
	}
	return "", fmt.Errorf("invalid sort key: %s", v)
}

// SortDirection is applied uniformly to the whole ordering.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection validates a sort direction coming in over the wire.
func ParseSortDirection(v string) (SortDirection, error) {
	switch SortDirection(v) {
	case SortAsc, SortDesc:
		return SortDirection(v), nil
	}
	return "", fmt.Errorf("invalid sort direction: %s", v)
}

// Input is the immutable snapshot one reconciliation pass works on. Callers
// must not mutate any of the referenced values while a pass runs; every
// update produces a new snapshot and a fresh pass.
type Input struct {
	Tracks           []Track
	EnabledSourceIDs map[SourceID]bool
	Favourites       []Favourite
	SelectedPlaylist *Playlist
	NowPlaying       *IdentifiedTrack
	SortBy           SortKey
	SortDirection    SortDirection

	// SelectedID is the ID of the UI-selected entry, if any.
	SelectedID string
}

// Collection threads the pipeline stages: the raw input, the identified
// output of the engine, and the harvested view after downstream filtering.
type Collection struct {
	Untouched  []Track           `json:"untouched"`
	Identified []IdentifiedTrack `json:"identified"`
	Harvested  []IdentifiedTrack `json:"harvested"`
}
