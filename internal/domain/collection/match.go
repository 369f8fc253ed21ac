package collection

import "strings"

// MatchesFavourite reports whether a track matches a favourite reference.
// Comparison is case-insensitive on artist and title; album is ignored.
// Inputs are assumed pre-trimmed by the favourites-editing boundary.
func MatchesFavourite(t Track, f Favourite) bool {
	return strings.EqualFold(t.Tags.Artist, f.Artist) &&
		strings.EqualFold(t.Tags.Title, f.Title)
}

// MatchesPlaylistTrack reports whether a track matches a playlist-track
// reference. Unlike the favourite matcher, all three of artist, title and
// album must match, case-insensitively.
func MatchesPlaylistTrack(t Track, pt PlaylistTrack) bool {
	return strings.EqualFold(t.Tags.Artist, pt.Artist) &&
		strings.EqualFold(t.Tags.Title, pt.Title) &&
		strings.EqualFold(t.Tags.Album, pt.Album)
}

// missingPlaceholderID builds the sentinel ID for a placeholder track.
func missingPlaceholderID(artist, title string) string {
	return "missing://" + strings.ToLower(artist) + "/" + strings.ToLower(title)
}

// missingTrack synthesizes a placeholder track from reference tags. The album
// is defaulted to the missing marker when the reference carries none.
func missingTrack(artist, title, album string) Track {
	if album == "" {
		album = MissingAlbum
	}
	return Track{
		ID:       missingPlaceholderID(artist, title),
		SourceID: MissingSource,
		Tags: Tags{
			Artist: artist,
			Title:  title,
			Album:  album,
			Disc:   1,
			Nr:     0,
		},
	}
}
