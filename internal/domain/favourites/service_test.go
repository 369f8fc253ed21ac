package favourites

import (
	"testing"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

func TestToggle(t *testing.T) {
	s := NewService()

	if added := s.Toggle("Bach", "Air"); !added {
		t.Error("first toggle should add")
	}
	if !s.Contains("bach", "AIR") {
		t.Error("Contains should match case-insensitively")
	}

	// Case-insensitive removal, even with different casing and padding.
	if added := s.Toggle("  BACH ", "air"); added {
		t.Error("second toggle should remove")
	}
	if len(s.All()) != 0 {
		t.Errorf("All() = %v, want empty", s.All())
	}
}

func TestToggleTrims(t *testing.T) {
	s := NewService()
	s.Toggle(" Bach ", " Air ")

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	if all[0].Artist != "Bach" || all[0].Title != "Air" {
		t.Errorf("stored = %+v, want trimmed Bach/Air", all[0])
	}
}

func TestOrderPreserved(t *testing.T) {
	s := NewService()
	s.Toggle("Bach", "Air")
	s.Toggle("Mozart", "Requiem")
	s.Toggle("Satie", "Vexations")
	s.Toggle("Mozart", "Requiem") // remove the middle one

	all := s.All()
	if len(all) != 2 || all[0].Artist != "Bach" || all[1].Artist != "Satie" {
		t.Errorf("All() = %v, want [Bach Satie] order", all)
	}
}

func TestRestoreAndOnChange(t *testing.T) {
	s := NewService()

	var last []collection.Favourite
	s.OnChange(func(snap []collection.Favourite) { last = snap })

	s.Restore([]collection.Favourite{{Artist: "Bach", Title: "Air"}})
	if len(last) != 1 {
		t.Fatalf("callback snapshot = %v, want 1 entry", last)
	}

	// Snapshots are copies; mutating one must not leak into the store.
	last[0].Artist = "changed"
	if s.All()[0].Artist != "Bach" {
		t.Error("snapshot mutation leaked into the store")
	}
}
