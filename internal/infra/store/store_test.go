package store

import (
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
	"github.com/icidasset/ongaku-ry/internal/domain/sources"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err := db.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFavouritesRoundTrip(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	favs := []collection.Favourite{
		{Artist: "Bach", Title: "Air"},
		{Artist: "Björk", Title: "Jóga"},
	}
	if err := dao.SaveFavourites(favs); err != nil {
		t.Fatalf("SaveFavourites: %v", err)
	}

	loaded, err := dao.LoadFavourites()
	if err != nil {
		t.Fatalf("LoadFavourites: %v", err)
	}
	if !reflect.DeepEqual(loaded, favs) {
		t.Errorf("loaded = %+v, want %+v", loaded, favs)
	}
}

func TestFavouritesSaveReplaces(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	if err := dao.SaveFavourites([]collection.Favourite{{Artist: "A", Title: "1"}, {Artist: "B", Title: "2"}}); err != nil {
		t.Fatal(err)
	}
	if err := dao.SaveFavourites([]collection.Favourite{{Artist: "C", Title: "3"}}); err != nil {
		t.Fatal(err)
	}

	loaded, err := dao.LoadFavourites()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Artist != "C" {
		t.Errorf("loaded = %+v, want only the second save", loaded)
	}
}

func TestPlaylistsRoundTrip(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	lists := []collection.Playlist{
		{
			ID:   "p1",
			Name: "Morning",
			Tracks: []collection.PlaylistTrack{
				{Artist: "Bach", Title: "Air", Album: "Suite No. 3"},
				{Artist: "Mozart", Title: "Lacrimosa", Album: "Requiem"},
			},
		},
		{ID: "p2", Name: "Empty"},
	}
	if err := dao.SavePlaylists(lists); err != nil {
		t.Fatalf("SavePlaylists: %v", err)
	}

	loaded, err := dao.LoadPlaylists()
	if err != nil {
		t.Fatalf("LoadPlaylists: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(loaded) = %d, want 2", len(loaded))
	}
	if !reflect.DeepEqual(loaded[0], lists[0]) {
		t.Errorf("loaded[0] = %+v, want %+v", loaded[0], lists[0])
	}
	if loaded[1].Name != "Empty" || len(loaded[1].Tracks) != 0 {
		t.Errorf("loaded[1] = %+v, want empty playlist", loaded[1])
	}
}

func TestPlaylistsSkipAutoGenerated(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	lists := []collection.Playlist{
		{ID: "p1", Name: "Mine"},
		{ID: "auto:src/Classical", Name: "Classical", AutoGenerated: true},
	}
	if err := dao.SavePlaylists(lists); err != nil {
		t.Fatal(err)
	}

	loaded, err := dao.LoadPlaylists()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].ID != "p1" {
		t.Errorf("loaded = %+v, want only the user playlist", loaded)
	}
}

func TestSourcesRoundTrip(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	srcs := []sources.Source{
		{ID: "s1", Name: "NAS", Kind: sources.KindFilesystem, Root: "/mnt/nas", Enabled: true},
		{ID: "s2", Name: "MPD", Kind: sources.KindMPD, Root: "localhost:6600", Enabled: false},
	}
	if err := dao.SaveSources(srcs); err != nil {
		t.Fatalf("SaveSources: %v", err)
	}

	loaded, err := dao.LoadSources()
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if !reflect.DeepEqual(loaded, srcs) {
		t.Errorf("loaded = %+v, want %+v", loaded, srcs)
	}
}

func TestLoadEmptyTables(t *testing.T) {
	dao := NewDAO(openTestDB(t))

	favs, err := dao.LoadFavourites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 0 {
		t.Errorf("favourites = %+v, want none", favs)
	}

	lists, err := dao.LoadPlaylists()
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 0 {
		t.Errorf("playlists = %+v, want none", lists)
	}

	srcs, err := dao.LoadSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 0 {
		t.Errorf("sources = %+v, want none", srcs)
	}
}

func TestSchemaVersionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db := NewDB(path)
	if err := db.Open(); err != nil {
		t.Fatal(err)
	}
	db.Close()

	// Reopening an existing database must not recreate tables or lose data.
	db = NewDB(path)
	if err := db.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	if v := db.getSchemaVersion(); v != CurrentSchemaVersion {
		t.Errorf("schema version = %q, want %q", v, CurrentSchemaVersion)
	}
}

func TestDebouncerCollapsesTriggers(t *testing.T) {
	var saves int32
	d := NewDebouncer(30*time.Millisecond, func() error {
		atomic.AddInt32(&saves, 1)
		return nil
	})
	defer d.Stop()

	d.Trigger()
	d.Trigger()
	d.Trigger()

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&saves); n != 1 {
		t.Errorf("saves = %d, want 1", n)
	}
}

func TestDebouncerFlush(t *testing.T) {
	var saves int32
	d := NewDebouncer(time.Hour, func() error {
		atomic.AddInt32(&saves, 1)
		return nil
	})

	d.Trigger()
	d.Flush()
	if n := atomic.LoadInt32(&saves); n != 1 {
		t.Errorf("saves after flush = %d, want 1", n)
	}

	// Flushing with nothing pending is a no-op.
	d.Flush()
	if n := atomic.LoadInt32(&saves); n != 1 {
		t.Errorf("saves after second flush = %d, want 1", n)
	}
}

func TestDebouncerStop(t *testing.T) {
	var saves int32
	d := NewDebouncer(10*time.Millisecond, func() error {
		atomic.AddInt32(&saves, 1)
		return nil
	})

	d.Stop()
	d.Trigger()

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&saves); n != 0 {
		t.Errorf("saves after stop = %d, want 0", n)
	}
}
