package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/icidasset/ongaku-ry/internal/config"
	"github.com/icidasset/ongaku-ry/internal/domain/collection"
	"github.com/icidasset/ongaku-ry/internal/domain/favourites"
	"github.com/icidasset/ongaku-ry/internal/domain/player"
	"github.com/icidasset/ongaku-ry/internal/domain/playlists"
	"github.com/icidasset/ongaku-ry/internal/domain/sources"
	mpdclient "github.com/icidasset/ongaku-ry/internal/infra/mpd"
	"github.com/icidasset/ongaku-ry/internal/infra/scanner"
	"github.com/icidasset/ongaku-ry/internal/infra/store"
	"github.com/icidasset/ongaku-ry/internal/transport/socketio"
)

const (
	persistWindow = 2 * time.Second
	rescanWindow  = 3 * time.Second
)

// app wires the domain services, the persistence layer, the scanners and the
// transport together. All cross-service reactions happen through change
// callbacks registered here.
type app struct {
	cfg *config.Config

	db  *store.DB
	dao *store.DAO

	collection *collection.Service
	favourites *favourites.Service
	playlists  *playlists.Service
	sources    *sources.Service
	player     *player.State

	scanner *scanner.Scanner
	watcher *scanner.Watcher
	socket  *socketio.Server
	persist *store.Debouncer

	mu             sync.Mutex
	tracksBySource map[collection.SourceID][]collection.Track
	mpdClients     map[collection.SourceID]*mpdclient.Client
	selected       *collection.Playlist // snapshot last handed to the engine
}

func (a *app) lastSelected() *collection.Playlist {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

func (a *app) setLastSelected(p *collection.Playlist) {
	a.mu.Lock()
	a.selected = p
	a.mu.Unlock()
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:            cfg,
		db:             store.NewDB(cfg.Database),
		collection:     collection.NewService(),
		favourites:     favourites.NewService(),
		playlists:      playlists.NewService(),
		sources:        sources.NewService(),
		player:         player.NewState(),
		scanner:        scanner.New(),
		tracksBySource: make(map[collection.SourceID][]collection.Track),
		mpdClients:     make(map[collection.SourceID]*mpdclient.Client),
	}

	if err := a.db.Open(); err != nil {
		return nil, err
	}
	a.dao = store.NewDAO(a.db)
	a.persist = store.NewDebouncer(persistWindow, a.saveAll)

	if key, err := collection.ParseSortKey(cfg.Collection.SortBy); err == nil {
		if dir, err := collection.ParseSortDirection(cfg.Collection.SortDirection); err == nil {
			a.collection.SetSort(key, dir)
		}
	}

	socketServer, err := socketio.NewServer(a.collection, a.favourites, a.playlists, a.sources, a.player)
	if err != nil {
		a.db.Close()
		return nil, err
	}
	a.socket = socketServer

	watcher, err := scanner.NewWatcher(rescanWindow, a.rescan)
	if err != nil {
		a.db.Close()
		return nil, fmt.Errorf("failed to create library watcher: %w", err)
	}
	a.watcher = watcher

	a.wireCallbacks()

	if err := a.restore(); err != nil {
		a.db.Close()
		return nil, err
	}

	return a, nil
}

// wireCallbacks connects the change notifications. Each mutation flows into
// the reconciliation engine, into the debounced persister and out to clients.
func (a *app) wireCallbacks() {
	a.collection.OnChange(func(collection.Collection) {
		a.socket.QueueCollectionBroadcast()
	})

	a.favourites.OnChange(func(snap []collection.Favourite) {
		a.collection.SetFavourites(snap)
		a.persist.Trigger()
	})

	a.playlists.OnChange(func() {
		// Skip the engine pass when the selected playlist snapshot is
		// unchanged (e.g. an unrelated playlist was renamed).
		if a.playlists.CheckSelected(a.lastSelected()) {
			sel := a.playlists.Selected()
			a.setLastSelected(sel)
			a.collection.SelectPlaylist(sel)
		}
		a.persist.Trigger()
	})

	a.sources.OnChange(func([]sources.Source) {
		a.collection.SetEnabledSources(a.sources.EnabledIDs())
		a.regenerateAutoPlaylists()
		a.persist.Trigger()
	})

	a.player.OnChange(func(np *collection.IdentifiedTrack) {
		a.collection.SetNowPlaying(np)
		a.socket.QueueStateBroadcast()
	})
}

// restore loads persisted user data, seeding sources from the config file on
// first start.
func (a *app) restore() error {
	favs, err := a.dao.LoadFavourites()
	if err != nil {
		return err
	}
	a.favourites.Restore(favs)

	lists, err := a.dao.LoadPlaylists()
	if err != nil {
		return err
	}
	a.playlists.Restore(lists)

	stored, err := a.dao.LoadSources()
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		a.sources.Restore(stored)
	} else {
		for _, sc := range a.cfg.Sources {
			if _, err := a.sources.Add(sc.Name, sources.Kind(sc.Kind), sc.Root); err != nil {
				log.Warn().Err(err).Str("name", sc.Name).Msg("Skipping configured source")
			}
		}
	}

	log.Info().
		Int("favourites", len(favs)).
		Int("playlists", len(lists)).
		Int("sources", len(a.sources.All())).
		Msg("User data restored")
	return nil
}

// scanAll scans every registered source and starts watching filesystem roots.
func (a *app) scanAll() {
	all := a.sources.All()
	ids := make([]collection.SourceID, 0, len(all))
	for _, src := range all {
		ids = append(ids, src.ID)
		if src.Kind == sources.KindFilesystem {
			if err := a.watcher.WatchRoot(src.ID, src.Root); err != nil {
				log.Warn().Err(err).Str("root", src.Root).Msg("Cannot watch source root")
			}
		}
	}
	a.rescan(ids)
}

// rescan refreshes the given sources and republishes the library.
func (a *app) rescan(ids []collection.SourceID) {
	for _, id := range ids {
		src, ok := a.findSource(id)
		if !ok {
			continue
		}

		tracks, err := a.scanSource(src)
		if err != nil {
			log.Error().Err(err).Str("source", src.Name).Msg("Scan failed")
			a.sources.SetError(id, err.Error())
			continue
		}

		log.Info().Str("source", src.Name).Int("tracks", len(tracks)).Msg("Scan complete")
		a.mu.Lock()
		a.tracksBySource[id] = tracks
		a.mu.Unlock()
		a.sources.SetError(id, "")
	}

	a.collection.SetTracks(a.allTracks())
	a.regenerateAutoPlaylists()
}

func (a *app) scanSource(src sources.Source) ([]collection.Track, error) {
	switch src.Kind {
	case sources.KindFilesystem:
		return a.scanner.ScanRoot(src.ID, src.Root)
	case sources.KindMPD:
		return a.mpdClient(src).ListTracks(src.ID)
	}
	return nil, fmt.Errorf("unknown source kind: %s", src.Kind)
}

func (a *app) mpdClient(src sources.Source) *mpdclient.Client {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.mpdClients[src.ID]; ok {
		return c
	}
	c := mpdclient.NewClient(src.Root, a.passwordFor(src.Root))
	a.mpdClients[src.ID] = c
	return c
}

// passwordFor looks the MPD password up in the config file; passwords are
// deliberately not persisted in the database.
func (a *app) passwordFor(root string) string {
	for _, sc := range a.cfg.Sources {
		if sc.Kind == "mpd" && sc.Root == root {
			return sc.Password
		}
	}
	return ""
}

func (a *app) findSource(id collection.SourceID) (sources.Source, bool) {
	for _, src := range a.sources.All() {
		if src.ID == id {
			return src, true
		}
	}
	return sources.Source{}, false
}

// allTracks concatenates the per-source scans in registration order.
func (a *app) allTracks() []collection.Track {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []collection.Track
	for _, src := range a.sources.All() {
		out = append(out, a.tracksBySource[src.ID]...)
	}
	return out
}

func (a *app) regenerateAutoPlaylists() {
	generated := collection.GenerateDirectoryPlaylists(a.sources.ViableIDs(), a.allTracks())
	a.playlists.ReplaceAutoGenerated(generated)
}

// saveAll writes the whole user-data set. Small data, one debounced writer.
func (a *app) saveAll() error {
	if err := a.dao.SaveFavourites(a.favourites.All()); err != nil {
		return err
	}
	if err := a.dao.SavePlaylists(a.playlists.UserPlaylists()); err != nil {
		return err
	}
	return a.dao.SaveSources(a.sources.All())
}

// close flushes pending saves and releases everything.
func (a *app) close() {
	a.watcher.Close()
	a.socket.Close()
	a.persist.Stop()

	a.mu.Lock()
	for _, c := range a.mpdClients {
		c.Close()
	}
	a.mu.Unlock()

	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("Database close error")
	}
}
