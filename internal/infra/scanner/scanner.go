// Package scanner produces library tracks by walking source directories and
// reading file tags.
package scanner

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// audioExtensions lists the file types the scanner picks up.
var audioExtensions = map[string]bool{
	".flac": true, ".mp3": true, ".wav": true, ".aiff": true, ".aif": true,
	".ogg": true, ".m4a": true, ".aac": true, ".wma": true, ".opus": true,
	".dsf": true, ".dff": true, ".dsd": true, ".ape": true, ".wv": true,
	".mpc": true, ".alac": true,
}

// Scanner walks source roots and reads file tags.
type Scanner struct{}

// New creates a scanner.
func New() *Scanner {
	return &Scanner{}
}

// ScanRoot walks one source root and returns its tracks, paths relative to
// the root, in walk order. Files whose tags cannot be read still become
// tracks: their tags degrade to empty strings with the title falling back to
// the file name. Only a broken root itself is an error.
func (s *Scanner) ScanRoot(sourceID collection.SourceID, root string) ([]collection.Track, error) {
	var tracks []collection.Track

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isAudioFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		tracks = append(tracks, buildTrack(sourceID, rel, path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	log.Info().Str("source", string(sourceID)).Str("root", root).Int("tracks", len(tracks)).Msg("Scan complete")
	return tracks, nil
}

// buildTrack reads tags from one file. Malformed or absent tags are just
// empty strings; the title falls back to the file name.
func buildTrack(sourceID collection.SourceID, rel, path string) collection.Track {
	t := collection.Track{
		ID:       trackID(sourceID, rel),
		SourceID: sourceID,
		Path:     rel,
		Tags:     collection.Tags{Disc: 1},
	}

	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot open file for tag reading")
		t.Tags.Title = titleFromPath(rel)
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot read tags")
		t.Tags.Title = titleFromPath(rel)
		return t
	}

	t.Tags.Artist = strings.TrimSpace(m.Artist())
	t.Tags.Title = strings.TrimSpace(m.Title())
	t.Tags.Album = strings.TrimSpace(m.Album())
	t.Tags.Genre = strings.TrimSpace(m.Genre())
	t.Tags.Year = m.Year()
	if disc, _ := m.Disc(); disc > 0 {
		t.Tags.Disc = disc
	}
	if nr, _ := m.Track(); nr > 0 {
		t.Tags.Nr = nr
	}
	if t.Tags.Title == "" {
		t.Tags.Title = titleFromPath(rel)
	}
	if m.Picture() != nil {
		t.Tags.Picture = "/albumart?source=" + url.QueryEscape(string(sourceID)) +
			"&path=" + url.QueryEscape(rel)
	}

	return t
}

// ReadPicture returns the embedded picture of a file and its MIME type.
func (s *Scanner) ReadPicture(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read tags: %w", err)
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, "", fmt.Errorf("no embedded picture")
	}

	mime := pic.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return pic.Data, mime, nil
}

// trackID derives a stable identifier from source and path.
func trackID(sourceID collection.SourceID, rel string) string {
	hash := md5.Sum([]byte(string(sourceID) + "\x00" + rel))
	return hex.EncodeToString(hash[:])
}

// isAudioFile checks the extension against the supported set.
func isAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// titleFromPath strips directory and extension from a relative path.
func titleFromPath(rel string) string {
	base := rel
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}
