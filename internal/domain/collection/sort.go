package collection

import (
	"sort"
	"strings"
)

// Sort orders identified tracks by the given key and direction, then assigns
// dense zero-based IndexInList values reflecting the final order. The sort is
// stable: equal keys preserve their prior relative order.
func Sort(items []IdentifiedTrack, key SortKey, dir SortDirection) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j], key, dir)
	})
	for i := range items {
		items[i].Identifiers.IndexInList = i
	}
}

func less(a, b IdentifiedTrack, key SortKey, dir SortDirection) bool {
	if key == SortByPlaylistIndex {
		return lessByPlaylistIndex(a, b, dir)
	}

	av := strings.ToLower(tagField(a.Track.Tags, key))
	bv := strings.ToLower(tagField(b.Track.Tags, key))
	if av == bv {
		return false
	}
	if dir == SortDesc {
		return av > bv
	}
	return av < bv
}

// lessByPlaylistIndex compares playlist positions. Entries without a position
// sort to the end regardless of direction, keeping their relative order.
func lessByPlaylistIndex(a, b IdentifiedTrack, dir SortDirection) bool {
	ai := a.Identifiers.IndexInPlaylist
	bi := b.Identifiers.IndexInPlaylist
	switch {
	case ai == nil:
		return false
	case bi == nil:
		return true
	case *ai == *bi:
		return false
	case dir == SortDesc:
		return *ai > *bi
	default:
		return *ai < *bi
	}
}

func tagField(t Tags, key SortKey) string {
	switch key {
	case SortByArtist:
		return t.Artist
	case SortByAlbum:
		return t.Album
	default:
		return t.Title
	}
}
