// Package sources manages the scan sources that feed the track library.
package sources

import "github.com/icidasset/ongaku-ry/internal/domain/collection"

// Kind tells the host how to produce tracks for a source.
type Kind string

const (
	// KindFilesystem is a local directory walked by the scanner.
	KindFilesystem Kind = "fs"
	// KindMPD is a remote MPD server listed over the wire.
	KindMPD Kind = "mpd"
)

// Source is one configured track source.
type Source struct {
	ID      collection.SourceID `json:"id"`
	Name    string              `json:"name"`
	Kind    Kind                `json:"kind"`
	Root    string              `json:"root"` // directory for fs, host:port for mpd
	Enabled bool                `json:"enabled"`
	Err     string              `json:"err,omitempty"` // last scan error, empty when healthy
}

// Viable reports whether the source should contribute tracks and
// auto-generated playlists.
func (s Source) Viable() bool {
	return s.Enabled && s.Err == ""
}
