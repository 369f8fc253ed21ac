package collection

import (
	"sort"
	"strings"
)

// GenerateDirectoryPlaylists derives auto-generated playlists from directory
// structure: one playlist per distinct top-level path segment per viable
// source, with references built from the matching tracks' tags in path order.
// Tracks sitting directly at a source root contribute no playlist.
//
// The result feeds playlist storage; the engine consumes these like any other
// playlist, with only the AutoGenerated flag affecting sort-mode choice.
func GenerateDirectoryPlaylists(viable []SourceID, tracks []Track) []Playlist {
	bySource := make(map[SourceID]map[string][]Track)
	for _, t := range tracks {
		segment := topLevelSegment(t.Path)
		if segment == "" {
			continue
		}
		if bySource[t.SourceID] == nil {
			bySource[t.SourceID] = make(map[string][]Track)
		}
		bySource[t.SourceID][segment] = append(bySource[t.SourceID][segment], t)
	}

	var playlists []Playlist
	for _, sourceID := range viable {
		segments := make([]string, 0, len(bySource[sourceID]))
		for segment := range bySource[sourceID] {
			segments = append(segments, segment)
		}
		sort.Strings(segments)

		for _, segment := range segments {
			group := bySource[sourceID][segment]
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].Path < group[j].Path
			})

			refs := make([]PlaylistTrack, 0, len(group))
			for _, t := range group {
				refs = append(refs, PlaylistTrack{
					Artist: t.Tags.Artist,
					Title:  t.Tags.Title,
					Album:  t.Tags.Album,
				})
			}

			playlists = append(playlists, Playlist{
				ID:            "auto:" + string(sourceID) + "/" + segment,
				Name:          segment,
				AutoGenerated: true,
				Tracks:        refs,
			})
		}
	}
	return playlists
}

// topLevelSegment returns the first directory component of a source-relative
// path, or "" when the path has no directory part.
func topLevelSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	idx := strings.Index(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
