package store

import (
	"database/sql"
	"fmt"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
	"github.com/icidasset/ongaku-ry/internal/domain/sources"
)

// DAO reads and writes user data. Saves replace the whole table in one
// transaction; the data sets are small enough that diffing is not worth it.
type DAO struct {
	db *DB
}

// NewDAO creates a DAO backed by the given database.
func NewDAO(db *DB) *DAO {
	return &DAO{db: db}
}

// SaveFavourites replaces all stored favourites.
func (d *DAO) SaveFavourites(favs []collection.Favourite) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM favourites"); err != nil {
			return err
		}
		stmt, err := tx.Prepare("INSERT INTO favourites (position, artist, title) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, f := range favs {
			if _, err := stmt.Exec(i, f.Artist, f.Title); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadFavourites loads favourites in stored order.
func (d *DAO) LoadFavourites() ([]collection.Favourite, error) {
	rows, err := d.db.DB().Query("SELECT artist, title FROM favourites ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load favourites: %w", err)
	}
	defer rows.Close()

	var favs []collection.Favourite
	for rows.Next() {
		var f collection.Favourite
		if err := rows.Scan(&f.Artist, &f.Title); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// SavePlaylists replaces all stored playlists with the given user playlists.
// Auto-generated playlists are rebuilt from the library on start and must not
// be passed in.
func (d *DAO) SavePlaylists(lists []collection.Playlist) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM playlist_tracks"); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM playlists"); err != nil {
			return err
		}

		listStmt, err := tx.Prepare("INSERT INTO playlists (id, name, position) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer listStmt.Close()

		trackStmt, err := tx.Prepare("INSERT INTO playlist_tracks (playlist_id, idx, artist, title, album) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer trackStmt.Close()

		for i, p := range lists {
			if p.AutoGenerated {
				continue
			}
			if _, err := listStmt.Exec(p.ID, p.Name, i); err != nil {
				return err
			}
			for j, ref := range p.Tracks {
				if _, err := trackStmt.Exec(p.ID, j, ref.Artist, ref.Title, ref.Album); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadPlaylists loads user playlists with their track references.
func (d *DAO) LoadPlaylists() ([]collection.Playlist, error) {
	rows, err := d.db.DB().Query("SELECT id, name FROM playlists ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	defer rows.Close()

	var lists []collection.Playlist
	for rows.Next() {
		var p collection.Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		lists = append(lists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		tracks, err := d.loadPlaylistTracks(lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Tracks = tracks
	}
	return lists, nil
}

func (d *DAO) loadPlaylistTracks(playlistID string) ([]collection.PlaylistTrack, error) {
	rows, err := d.db.DB().Query(
		"SELECT artist, title, album FROM playlist_tracks WHERE playlist_id = ? ORDER BY idx",
		playlistID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []collection.PlaylistTrack
	for rows.Next() {
		var ref collection.PlaylistTrack
		if err := rows.Scan(&ref.Artist, &ref.Title, &ref.Album); err != nil {
			return nil, err
		}
		tracks = append(tracks, ref)
	}
	return tracks, rows.Err()
}

// SaveSources replaces all stored sources.
func (d *DAO) SaveSources(srcs []sources.Source) error {
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM sources"); err != nil {
			return err
		}
		stmt, err := tx.Prepare("INSERT INTO sources (id, name, kind, root, enabled, position) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, s := range srcs {
			enabled := 0
			if s.Enabled {
				enabled = 1
			}
			if _, err := stmt.Exec(string(s.ID), s.Name, string(s.Kind), s.Root, enabled, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadSources loads sources in stored order. Source errors are runtime state
// and start out empty.
func (d *DAO) LoadSources() ([]sources.Source, error) {
	rows, err := d.db.DB().Query("SELECT id, name, kind, root, enabled FROM sources ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	defer rows.Close()

	var srcs []sources.Source
	for rows.Next() {
		var s sources.Source
		var id, kind string
		var enabled int
		if err := rows.Scan(&id, &s.Name, &kind, &s.Root, &enabled); err != nil {
			return nil, err
		}
		s.ID = collection.SourceID(id)
		s.Kind = sources.Kind(kind)
		s.Enabled = enabled != 0
		srcs = append(srcs, s)
	}
	return srcs, rows.Err()
}

func (d *DAO) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write user data: %w", err)
	}
	return tx.Commit()
}
