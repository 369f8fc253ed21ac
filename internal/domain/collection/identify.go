package collection

// Identify runs one reconciliation pass over the snapshot and returns the
// ordered, annotated track list. It never fails: references without a
// matching library track become missing placeholders, and malformed tags are
// compared as empty strings.
//
// The returned slice fully replaces any previous result; Identifiers are
// recomputed from scratch on every pass.
func Identify(in Input) []IdentifiedTrack {
	eligible := filterEnabled(in.Tracks, in.EnabledSourceIDs)
	consumed := make([]bool, len(in.Favourites))

	var out []IdentifiedTrack
	if in.SelectedPlaylist == nil {
		out = identifyDefault(in, eligible, consumed)
	} else {
		out = identifyPlaylist(in, eligible, consumed)
	}

	if playlistOrderForced(in.SelectedPlaylist) {
		Sort(out, SortByPlaylistIndex, SortAsc)
	} else {
		Sort(out, in.SortBy, in.SortDirection)
	}
	return out
}

// playlistOrderForced reports whether the selected playlist overrides the
// active sort preference. User playlists are manually ordered; auto-generated
// ones keep following the sort preference.
func playlistOrderForced(p *Playlist) bool {
	return p != nil && !p.AutoGenerated
}

// filterEnabled restricts the library to tracks from enabled sources.
// A nil set means all sources are enabled.
func filterEnabled(tracks []Track, enabled map[SourceID]bool) []Track {
	if enabled == nil {
		return tracks
	}
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if enabled[t.SourceID] {
			out = append(out, t)
		}
	}
	return out
}

// identifyDefault annotates every eligible library track and synthesizes a
// placeholder for each favourite no track consumed. Placeholders precede the
// library tracks before sorting.
func identifyDefault(in Input, eligible []Track, consumed []bool) []IdentifiedTrack {
	matched := make([]IdentifiedTrack, 0, len(eligible))
	for _, t := range eligible {
		matched = append(matched, IdentifiedTrack{
			Identifiers: Identifiers{
				IsFavourite:  consumeFavourites(t, in.Favourites, consumed),
				IsNowPlaying: nowPlayingMatch(in.NowPlaying, t, nil),
				IsSelected:   in.SelectedID != "" && in.SelectedID == t.ID,
			},
			Track: t,
		})
	}

	out := missingFavourites(in.Favourites, consumed)
	return append(out, matched...)
}

// identifyPlaylist builds the playlist view: playlist-track references claim
// library tracks via first-available positional assignment, unclaimed
// references become placeholders at their stored index, unclaimed library
// tracks are dropped, and favourites without a playlist entry are appended as
// placeholders after the playlist-derived items.
func identifyPlaylist(in Input, eligible []Track, consumed []bool) []IdentifiedTrack {
	refs := in.SelectedPlaylist.Tracks

	// First-available positional assignment: references in stored order each
	// claim the first still-unclaimed matching track, library iterated in its
	// untouched order. Each side is claimed at most once.
	claim := make([]int, len(refs))
	taken := make([]bool, len(eligible))
	for ri := range refs {
		claim[ri] = -1
		for ti := range eligible {
			if taken[ti] || !MatchesPlaylistTrack(eligible[ti], refs[ri]) {
				continue
			}
			claim[ri] = ti
			taken[ti] = true
			break
		}
	}

	out := make([]IdentifiedTrack, 0, len(refs))
	for ri, ref := range refs {
		pos := ri
		if ti := claim[ri]; ti >= 0 {
			t := eligible[ti]
			out = append(out, IdentifiedTrack{
				Identifiers: Identifiers{
					IndexInPlaylist: &pos,
					IsFavourite:     consumeFavourites(t, in.Favourites, consumed),
					IsNowPlaying:    nowPlayingMatch(in.NowPlaying, t, &pos),
					IsSelected:      in.SelectedID != "" && in.SelectedID == t.ID,
				},
				Track: t,
			})
			continue
		}

		// Placeholders from playlist references never consult the favourites
		// set; only library-track matches do.
		out = append(out, IdentifiedTrack{
			Identifiers: Identifiers{
				IndexInPlaylist: &pos,
				IsMissing:       true,
			},
			Track: missingTrack(ref.Artist, ref.Title, ref.Album),
		})
	}

	return append(out, missingFavourites(in.Favourites, consumed)...)
}

// consumeFavourites reports whether the track matches any favourite and
// removes every matching favourite from the missing pool. A favourite is
// consumed by the first matching track; later duplicate-tagged tracks are
// still flagged favourite but contribute no further placeholder budget.
func consumeFavourites(t Track, favourites []Favourite, consumed []bool) bool {
	matched := false
	for i, f := range favourites {
		if MatchesFavourite(t, f) {
			matched = true
			consumed[i] = true
		}
	}
	return matched
}

// missingFavourites synthesizes exactly one placeholder per unconsumed
// favourite, in favourites order.
func missingFavourites(favourites []Favourite, consumed []bool) []IdentifiedTrack {
	var out []IdentifiedTrack
	for i, f := range favourites {
		if consumed[i] {
			continue
		}
		out = append(out, IdentifiedTrack{
			Identifiers: Identifiers{
				IsFavourite: true,
				IsMissing:   true,
			},
			Track: missingTrack(f.Artist, f.Title, ""),
		})
	}
	return out
}

// nowPlayingMatch matches a track against the externally supplied now-playing
// entry. Identity is by track ID; when both the now-playing context and the
// current context carry a playlist index, the indices must also agree, which
// disambiguates duplicate songs at different playlist positions.
func nowPlayingMatch(np *IdentifiedTrack, t Track, pos *int) bool {
	if np == nil || np.Track.ID != t.ID {
		return false
	}
	if np.Identifiers.IndexInPlaylist != nil && pos != nil {
		return *np.Identifiers.IndexInPlaylist == *pos
	}
	return true
}
