package collection

import "strings"

// Harvest derives the rendered view from an identified list: entries not
// matching the search term are dropped, and when the favourites-only toggle
// is on, non-favourites are kept but flagged hidden so the renderer and the
// queue-fill can skip them. The input is not modified.
func Harvest(identified []IdentifiedTrack, searchTerm string, favouritesOnly bool) []IdentifiedTrack {
	query := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]IdentifiedTrack, 0, len(identified))
	for _, it := range identified {
		if query != "" && !matchesQuery(it.Track.Tags, query) {
			continue
		}
		if favouritesOnly && !it.Identifiers.IsFavourite {
			it.Identifiers.IsFavouritesOnlyHidden = true
		}
		out = append(out, it)
	}
	return out
}

func matchesQuery(t Tags, query string) bool {
	return strings.Contains(strings.ToLower(t.Artist), query) ||
		strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Album), query)
}
