package playlists

import (
	"testing"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

func TestCreateUniqueNames(t *testing.T) {
	s := NewService()

	if _, err := s.Create("Roadtrip"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create("roadtrip"); err == nil {
		t.Error("Create should reject a case-insensitive duplicate name")
	}
	if _, err := s.Create("  "); err == nil {
		t.Error("Create should reject an empty name")
	}
}

func TestRename(t *testing.T) {
	s := NewService()
	a, _ := s.Create("A")
	s.Create("B")

	if err := s.Rename(a.ID, "b"); err == nil {
		t.Error("Rename should reject a name already in use")
	}
	if err := s.Rename(a.ID, "C"); err != nil {
		t.Errorf("Rename: %v", err)
	}
	if err := s.Rename(a.ID, "C"); err != nil {
		t.Errorf("Rename to own name should succeed: %v", err)
	}
	if err := s.Rename("nope", "D"); err == nil {
		t.Error("Rename of unknown playlist should fail")
	}
}

func TestTrackEditing(t *testing.T) {
	s := NewService()
	p, _ := s.Create("Mix")

	refs := []collection.PlaylistTrack{
		{Artist: "One", Title: "X", Album: "Singles"},
		{Artist: "Two", Title: "Y", Album: "Singles"},
	}
	if err := s.AddTracks(p.ID, refs); err != nil {
		t.Fatalf("AddTracks: %v", err)
	}
	if err := s.RemoveTrack(p.ID, 0); err != nil {
		t.Fatalf("RemoveTrack: %v", err)
	}
	if err := s.RemoveTrack(p.ID, 5); err == nil {
		t.Error("RemoveTrack should reject an out-of-range index")
	}

	got := s.All()[0].Tracks
	if len(got) != 1 || got[0].Title != "Y" {
		t.Errorf("tracks = %v, want [Y]", got)
	}
}

func TestSelection(t *testing.T) {
	s := NewService()
	p, _ := s.Create("Mix")

	if err := s.Select("nope"); err == nil {
		t.Error("Select of unknown playlist should fail")
	}
	if err := s.Select(p.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}

	snap := s.Selected()
	if snap == nil || snap.ID != p.ID {
		t.Fatalf("Selected() = %v, want playlist %s", snap, p.ID)
	}

	// The snapshot is a copy: mutating it must not leak into the store.
	snap.Tracks = append(snap.Tracks, collection.PlaylistTrack{Title: "sneak"})
	if len(s.Selected().Tracks) != 0 {
		t.Error("snapshot mutation leaked into the store")
	}

	if err := s.Remove(p.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Selected() != nil {
		t.Error("removing the selected playlist should deselect it")
	}
}

func TestCheckSelected(t *testing.T) {
	s := NewService()
	p, _ := s.Create("Mix")
	s.Select(p.ID)

	lastUsed := s.Selected()
	if s.CheckSelected(lastUsed) {
		t.Error("unchanged selection should not report divergence")
	}

	s.AddTracks(p.ID, []collection.PlaylistTrack{{Artist: "One", Title: "X", Album: "S"}})
	if !s.CheckSelected(lastUsed) {
		t.Error("edited selection should report divergence")
	}

	s.Deselect()
	if !s.CheckSelected(lastUsed) {
		t.Error("deselection should report divergence from a non-nil snapshot")
	}
	if s.CheckSelected(nil) {
		t.Error("nil vs nothing selected should not report divergence")
	}
}

func TestReplaceAutoGenerated(t *testing.T) {
	s := NewService()
	s.Create("Mine")
	s.ReplaceAutoGenerated([]collection.Playlist{
		{ID: "auto:src/Jazz", Name: "Jazz", AutoGenerated: true},
	})
	s.Select("auto:src/Jazz")

	// Regeneration drops the old auto playlists and deselects vanished ones.
	s.ReplaceAutoGenerated([]collection.Playlist{
		{ID: "auto:src/Rock", Name: "Rock", AutoGenerated: true},
	})

	all := s.All()
	if len(all) != 2 || all[0].Name != "Mine" || all[1].Name != "Rock" {
		t.Errorf("All() = %v, want [Mine Rock]", all)
	}
	if s.Selected() != nil {
		t.Error("vanished auto playlist should be deselected")
	}
}

func TestAutoGeneratedNotEditable(t *testing.T) {
	s := NewService()
	s.ReplaceAutoGenerated([]collection.Playlist{
		{ID: "auto:src/Jazz", Name: "Jazz", AutoGenerated: true},
	})

	if err := s.AddTracks("auto:src/Jazz", nil); err == nil {
		t.Error("AddTracks on auto playlist should fail")
	}
	if err := s.RemoveTrack("auto:src/Jazz", 0); err == nil {
		t.Error("RemoveTrack on auto playlist should fail")
	}
	if err := s.Rename("auto:src/Jazz", "Other"); err == nil {
		t.Error("Rename on auto playlist should fail")
	}
}

func TestUserPlaylistsExcludesAuto(t *testing.T) {
	s := NewService()
	s.Create("Mine")
	s.ReplaceAutoGenerated([]collection.Playlist{
		{ID: "auto:src/Jazz", Name: "Jazz", AutoGenerated: true},
	})

	user := s.UserPlaylists()
	if len(user) != 1 || user[0].Name != "Mine" {
		t.Errorf("UserPlaylists() = %v, want [Mine]", user)
	}
}
