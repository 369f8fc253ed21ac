package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"FLAC file", "Music/Album/01-Track.flac", true},
		{"MP3 file", "Music/Album/track.mp3", true},
		{"OGG file", "music.ogg", true},
		{"M4A file", "song.m4a", true},
		{"DSF file", "NAS/MusicLibrary/Album/01-Track.dsf", true},
		{"Opus file", "stream.opus", true},
		{"Uppercase FLAC", "track.FLAC", true},
		{"Mixed case MP3", "track.Mp3", true},

		{"Text file", "readme.txt", false},
		{"Image file", "cover.jpg", false},
		{"Playlist file", "playlist.m3u", false},
		{"No extension", "filename", false},
		{"Empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAudioFile(tt.path); got != tt.expected {
				t.Errorf("isAudioFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestTrackIDStable(t *testing.T) {
	a := trackID("src", "Album/track.flac")
	b := trackID("src", "Album/track.flac")
	if a != b {
		t.Errorf("trackID not deterministic: %q vs %q", a, b)
	}
	if a == trackID("other", "Album/track.flac") {
		t.Error("trackID should differ across sources")
	}
	if a == trackID("src", "Album/other.flac") {
		t.Error("trackID should differ across paths")
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"Album/01 - Air.flac", "01 - Air"},
		{"track.mp3", "track"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := titleFromPath(tt.path); got != tt.expected {
			t.Errorf("titleFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Classical", "air.flac"), "not real audio")
	mustWrite(t, filepath.Join(root, "Classical", "cover.jpg"), "not audio at all")
	mustWrite(t, filepath.Join(root, "rootfile.mp3"), "junk")
	mustWrite(t, filepath.Join(root, ".hidden", "skipped.mp3"), "junk")

	s := New()
	tracks, err := s.ScanRoot("src", root)
	if err != nil {
		t.Fatalf("ScanRoot: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("len(tracks) = %d, want 2 (audio files only, hidden dirs skipped)", len(tracks))
	}

	// Walk order is lexicographic: Classical/air.flac before rootfile.mp3.
	first := tracks[0]
	if first.Path != "Classical/air.flac" {
		t.Errorf("tracks[0].Path = %q, want %q", first.Path, "Classical/air.flac")
	}
	if first.SourceID != "src" {
		t.Errorf("SourceID = %q, want %q", first.SourceID, "src")
	}

	// Unreadable tags degrade to an empty artist and a file-name title.
	if first.Tags.Artist != "" {
		t.Errorf("Artist = %q, want empty for unreadable tags", first.Tags.Artist)
	}
	if first.Tags.Title != "air" {
		t.Errorf("Title = %q, want file-name fallback %q", first.Tags.Title, "air")
	}
	if first.Tags.Disc != 1 {
		t.Errorf("Disc = %d, want default 1", first.Tags.Disc)
	}
}

func TestScanRootMissingDirectory(t *testing.T) {
	s := New()
	if _, err := s.ScanRoot("src", "/does/not/exist"); err == nil {
		t.Error("scanning a missing root should fail")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
