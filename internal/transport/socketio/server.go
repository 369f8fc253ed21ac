// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
	"github.com/icidasset/ongaku-ry/internal/domain/favourites"
	"github.com/icidasset/ongaku-ry/internal/domain/player"
	"github.com/icidasset/ongaku-ry/internal/domain/playlists"
	"github.com/icidasset/ongaku-ry/internal/domain/sources"
)

const maxExternalConnections = 4

// Server handles Socket.io connections and events.
type Server struct {
	io         *socket.Server
	collection *collection.Service
	favourites *favourites.Service
	playlists  *playlists.Service
	sources    *sources.Service
	player     *player.State

	limiter   *ConnectionLimiter
	debouncer *BroadcastDebouncer

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server on top of the given services.
func NewServer(
	collectionService *collection.Service,
	favouritesService *favourites.Service,
	playlistsService *playlists.Service,
	sourcesService *sources.Service,
	playerState *player.State,
) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:         socket.NewServer(nil, opts),
		collection: collectionService,
		favourites: favouritesService,
		playlists:  playlistsService,
		sources:    sourcesService,
		player:     playerState,
		limiter:    NewConnectionLimiter(maxExternalConnections),
		clients:    make(map[string]*socket.Socket),
	}
	s.debouncer = NewBroadcastDebouncer(150*time.Millisecond, s.BroadcastCollection, s.BroadcastState)

	s.setupHandlers()

	return s, nil
}

// QueueCollectionBroadcast schedules a debounced pushCollection. Wired to the
// collection service's change callback, which can fire in bursts during a
// rescan.
func (s *Server) QueueCollectionBroadcast() {
	s.debouncer.TriggerCollection()
}

// QueueStateBroadcast schedules a debounced pushState.
func (s *Server) QueueStateBroadcast() {
	s.debouncer.TriggerState()
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		remoteIP := handshakeIP(client)

		log.Info().Str("id", clientID).Str("ip", remoteIP).Msg("Client connected")

		_, evicted := s.limiter.TryAdd(clientID, remoteIP)
		if evicted != "" {
			s.mu.RLock()
			old := s.clients[evicted]
			s.mu.RUnlock()
			if old != nil {
				log.Info().Str("id", evicted).Msg("Evicting oldest external client")
				old.Disconnect(true)
			}
		}

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushCollection(client)
			s.pushState(client)
			s.pushSources(client)
			s.pushPlaylists(client)
			s.pushFavourites(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Remove(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		// Collection view events
		client.On("getCollection", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getCollection")
			s.pushCollection(client)
		})

		client.On("setSortBy", func(args ...any) {
			if v, ok := argString(args, "value"); ok {
				log.Debug().Str("id", clientID).Str("sortBy", v).Msg("setSortBy")
				key, err := collection.ParseSortKey(v)
				if err != nil {
					log.Warn().Err(err).Msg("setSortBy rejected")
					return
				}
				_, dir := s.currentSort()
				s.collection.SetSort(key, dir)
			}
		})

		client.On("setSortDirection", func(args ...any) {
			if v, ok := argString(args, "value"); ok {
				log.Debug().Str("id", clientID).Str("direction", v).Msg("setSortDirection")
				dir, err := collection.ParseSortDirection(v)
				if err != nil {
					log.Warn().Err(err).Msg("setSortDirection rejected")
					return
				}
				key, _ := s.currentSort()
				s.collection.SetSort(key, dir)
			}
		})

		client.On("search", func(args ...any) {
			term, _ := argString(args, "value")
			log.Debug().Str("id", clientID).Str("term", term).Msg("search")
			s.collection.SetSearchTerm(term)
		})

		client.On("setFavouritesOnly", func(args ...any) {
			on, _ := argBool(args, "value")
			log.Debug().Str("id", clientID).Bool("on", on).Msg("setFavouritesOnly")
			s.collection.SetFavouritesOnly(on)
		})

		client.On("selectTrack", func(args ...any) {
			id, _ := argString(args, "id")
			s.collection.SetSelectedID(id)
		})

		// Favourites
		client.On("toggleFavourite", func(args ...any) {
			artist, _ := argString(args, "artist")
			title, ok := argString(args, "title")
			if !ok {
				return
			}
			added := s.favourites.Toggle(artist, title)
			log.Debug().Str("id", clientID).Str("title", title).Bool("added", added).Msg("toggleFavourite")
			s.BroadcastFavourites()
		})

		// Playlists
		client.On("createPlaylist", func(args ...any) {
			name, ok := argString(args, "name")
			if !ok {
				return
			}
			if _, err := s.playlists.Create(name); err != nil {
				log.Warn().Err(err).Msg("createPlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("renamePlaylist", func(args ...any) {
			id, _ := argString(args, "id")
			name, _ := argString(args, "name")
			if err := s.playlists.Rename(id, name); err != nil {
				log.Warn().Err(err).Msg("renamePlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("removePlaylist", func(args ...any) {
			id, _ := argString(args, "id")
			if err := s.playlists.Remove(id); err != nil {
				log.Warn().Err(err).Msg("removePlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("addToPlaylist", func(args ...any) {
			id, _ := argString(args, "id")
			refs := argPlaylistTracks(args)
			if len(refs) == 0 {
				return
			}
			if err := s.playlists.AddTracks(id, refs); err != nil {
				log.Warn().Err(err).Msg("addToPlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("removeFromPlaylist", func(args ...any) {
			id, _ := argString(args, "id")
			index, ok := argInt(args, "index")
			if !ok {
				return
			}
			if err := s.playlists.RemoveTrack(id, index); err != nil {
				log.Warn().Err(err).Msg("removeFromPlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("selectPlaylist", func(args ...any) {
			id, _ := argString(args, "id")
			log.Debug().Str("id", clientID).Str("playlist", id).Msg("selectPlaylist")
			if err := s.playlists.Select(id); err != nil {
				log.Warn().Err(err).Msg("selectPlaylist failed")
				return
			}
			s.BroadcastPlaylists()
		})

		client.On("deselectPlaylist", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("deselectPlaylist")
			s.playlists.Deselect()
			s.BroadcastPlaylists()
		})

		// Sources
		client.On("getSources", func(args ...any) {
			s.pushSources(client)
		})

		client.On("setSourceEnabled", func(args ...any) {
			id, _ := argString(args, "id")
			enabled, _ := argBool(args, "enabled")
			log.Debug().Str("id", clientID).Str("source", id).Bool("enabled", enabled).Msg("setSourceEnabled")
			if err := s.sources.SetEnabled(collection.SourceID(id), enabled); err != nil {
				log.Warn().Err(err).Msg("setSourceEnabled failed")
				return
			}
			s.BroadcastSources()
		})

		// Playback state
		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("setNowPlaying", func(args ...any) {
			id, ok := argString(args, "id")
			if !ok {
				return
			}
			it, found := s.findIdentified(id, argIntPtr(args, "index"))
			if !found {
				log.Warn().Str("track", id).Msg("setNowPlaying: track not in current view")
				return
			}
			log.Debug().Str("id", clientID).Str("track", id).Msg("setNowPlaying")
			s.player.Play(it)
		})

		client.On("pause", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("pause")
			s.player.Pause()
		})

		client.On("stop", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("stop")
			s.player.Stop()
		})
	})
}

// currentSort reads the sort preferences back from the last computed pass.
func (s *Server) currentSort() (collection.SortKey, collection.SortDirection) {
	return s.collection.SortPreferences()
}

// findIdentified locates an entry of the current identified view by track ID,
// disambiguated by playlist index when the client supplies one.
func (s *Server) findIdentified(id string, index *int) (collection.IdentifiedTrack, bool) {
	for _, it := range s.collection.Collection().Identified {
		if it.Track.ID != id {
			continue
		}
		if index != nil {
			ip := it.Identifiers.IndexInPlaylist
			if ip == nil || *ip != *index {
				continue
			}
		}
		return it, true
	}
	return collection.IdentifiedTrack{}, false
}

func (s *Server) collectionPayload() map[string]interface{} {
	c := s.collection.Collection()
	payload := map[string]interface{}{
		"tracks": c.Harvested,
		"total":  len(c.Identified),
	}
	if idx, ok := s.collection.NowPlayingIndex(); ok {
		payload["nowPlayingIndex"] = idx
	}
	return payload
}

func (s *Server) playlistsPayload() map[string]interface{} {
	payload := map[string]interface{}{
		"playlists": s.playlists.All(),
	}
	if sel := s.playlists.Selected(); sel != nil {
		payload["selectedId"] = sel.ID
	}
	return payload
}

func (s *Server) pushCollection(client *socket.Socket) {
	client.Emit("pushCollection", s.collectionPayload())
}

func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.player.ToJSON())
}

func (s *Server) pushSources(client *socket.Socket) {
	client.Emit("pushSources", s.sources.All())
}

func (s *Server) pushPlaylists(client *socket.Socket) {
	client.Emit("pushPlaylists", s.playlistsPayload())
}

func (s *Server) pushFavourites(client *socket.Socket) {
	client.Emit("pushFavourites", s.favourites.All())
}

// BroadcastCollection sends the current collection view to all clients.
func (s *Server) BroadcastCollection() {
	s.io.Emit("pushCollection", s.collectionPayload())
}

// BroadcastState sends the playback state to all clients.
func (s *Server) BroadcastState() {
	s.io.Emit("pushState", s.player.ToJSON())
}

// BroadcastSources sends the source list to all clients.
func (s *Server) BroadcastSources() {
	s.io.Emit("pushSources", s.sources.All())
}

// BroadcastPlaylists sends the playlist list to all clients.
func (s *Server) BroadcastPlaylists() {
	s.io.Emit("pushPlaylists", s.playlistsPayload())
}

// BroadcastFavourites sends the favourites list to all clients.
func (s *Server) BroadcastFavourites() {
	s.io.Emit("pushFavourites", s.favourites.All())
}

// handshakeIP extracts the client IP, stripping the IPv4-mapped prefix
// engine.io reports for IPv4 clients.
func handshakeIP(client *socket.Socket) string {
	h := client.Handshake()
	if h == nil {
		return ""
	}
	return strings.TrimPrefix(h.Address, "::ffff:")
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
