package collection

import "testing"

func pathTrack(id string, source SourceID, path, artist, title, album string) Track {
	return Track{
		ID:       id,
		SourceID: source,
		Path:     path,
		Tags:     Tags{Artist: artist, Title: title, Album: album},
	}
}

func TestGenerateDirectoryPlaylists(t *testing.T) {
	tracks := []Track{
		pathTrack("1", "local", "Classical/Bach/air.flac", "Bach", "Air", "Suite No. 3"),
		pathTrack("2", "local", "Classical/Mozart/requiem.flac", "Mozart", "Requiem", "Requiem"),
		pathTrack("3", "local", "Ambient/eno.flac", "Eno", "1/1", "Music for Airports"),
		pathTrack("4", "usb", "Classical/satie.flac", "Satie", "Gymnopédie No. 1", "Gymnopédies"),
		pathTrack("5", "local", "rootfile.flac", "Nobody", "Rootfile", ""),
	}

	playlists := GenerateDirectoryPlaylists([]SourceID{"local", "usb"}, tracks)

	if len(playlists) != 3 {
		t.Fatalf("len(playlists) = %d, want 3", len(playlists))
	}

	// Per source, segments come out alphabetically.
	expected := []struct {
		id     string
		name   string
		tracks int
	}{
		{"auto:local/Ambient", "Ambient", 1},
		{"auto:local/Classical", "Classical", 2},
		{"auto:usb/Classical", "Classical", 1},
	}
	for i, want := range expected {
		got := playlists[i]
		if got.ID != want.id || got.Name != want.name || len(got.Tracks) != want.tracks {
			t.Errorf("playlists[%d] = {%s %s %d tracks}, want {%s %s %d tracks}",
				i, got.ID, got.Name, len(got.Tracks), want.id, want.name, want.tracks)
		}
		if !got.AutoGenerated {
			t.Errorf("playlists[%d] not flagged auto-generated", i)
		}
	}

	// References in path order, built from track tags.
	classical := playlists[1]
	if classical.Tracks[0].Artist != "Bach" || classical.Tracks[1].Artist != "Mozart" {
		t.Errorf("reference order = [%s %s], want [Bach Mozart]",
			classical.Tracks[0].Artist, classical.Tracks[1].Artist)
	}
}

func TestGenerateDirectoryPlaylistsSkipsNonViableSources(t *testing.T) {
	tracks := []Track{
		pathTrack("1", "broken", "Jazz/track.flac", "A", "B", "C"),
	}
	playlists := GenerateDirectoryPlaylists([]SourceID{"local"}, tracks)
	if len(playlists) != 0 {
		t.Errorf("len(playlists) = %d, want 0", len(playlists))
	}
}

func TestTopLevelSegment(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"Classical/Bach/air.flac", "Classical"},
		{"/Classical/air.flac", "Classical"},
		{"rootfile.flac", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := topLevelSegment(tt.path); got != tt.expected {
			t.Errorf("topLevelSegment(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}
