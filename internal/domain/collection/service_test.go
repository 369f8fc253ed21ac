package collection

import "testing"

func TestServiceRecomputesOnChange(t *testing.T) {
	s := NewService()

	var calls int
	var last Collection
	s.OnChange(func(c Collection) {
		calls++
		last = c
	})

	s.SetTracks([]Track{track("a", "Bach", "Air", "")})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(last.Identified) != 1 {
		t.Fatalf("len(Identified) = %d, want 1", len(last.Identified))
	}

	s.SetFavourites([]Favourite{{Artist: "Mozart", Title: "Requiem"}})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if len(last.Identified) != 2 {
		t.Errorf("len(Identified) = %d, want 2 (track + placeholder)", len(last.Identified))
	}

	// The output is replaced wholesale, never patched.
	got := s.Collection()
	if len(got.Identified) != len(last.Identified) {
		t.Errorf("Collection() out of sync with last change callback")
	}
}

func TestServiceNowPlayingIndex(t *testing.T) {
	s := NewService()
	s.SetTracks([]Track{
		track("a", "Bach", "Air", ""),
		track("b", "Mozart", "Requiem", ""),
	})

	if _, ok := s.NowPlayingIndex(); ok {
		t.Error("NowPlayingIndex should report nothing playing")
	}

	s.SetNowPlaying(&IdentifiedTrack{Track: track("b", "Mozart", "Requiem", "")})
	idx, ok := s.NowPlayingIndex()
	if !ok {
		t.Fatal("NowPlayingIndex should find the playing entry")
	}
	// Default sort is by artist ascending: Bach before Mozart.
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
}

func TestServiceQueueSkipsMissingAndHidden(t *testing.T) {
	s := NewService()
	s.SetTracks([]Track{
		track("a", "Bach", "Air", ""),
		track("b", "Mozart", "Requiem", ""),
	})
	s.SetFavourites([]Favourite{
		{Artist: "Bach", Title: "Air"},
		{Artist: "Satie", Title: "Vexations"},
	})
	s.SetFavouritesOnly(true)

	queue := s.Queue()
	if len(queue) != 1 {
		t.Fatalf("len(queue) = %d, want 1", len(queue))
	}
	if queue[0].ID != "a" {
		t.Errorf("queue[0].ID = %q, want %q", queue[0].ID, "a")
	}
}

func TestServicePlaylistSelection(t *testing.T) {
	s := NewService()
	s.SetTracks([]Track{track("y", "Two", "Y", "Singles")})
	s.SelectPlaylist(&Playlist{
		ID: "p1",
		Tracks: []PlaylistTrack{
			{Artist: "One", Title: "X", Album: "Singles"},
			{Artist: "Two", Title: "Y", Album: "Singles"},
		},
	})

	c := s.Collection()
	if len(c.Identified) != 2 {
		t.Fatalf("len(Identified) = %d, want 2", len(c.Identified))
	}
	if !c.Identified[0].Identifiers.IsMissing {
		t.Error("first entry should be the placeholder for X")
	}

	s.SelectPlaylist(nil)
	c = s.Collection()
	if len(c.Identified) != 1 || c.Identified[0].Track.ID != "y" {
		t.Errorf("library view after deselect = %+v, want just track y", c.Identified)
	}
}
