// Package mpd lists a track library from an MPD server, as an alternative
// source kind next to filesystem scanning.
package mpd

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Client wraps the gompd client with reconnection logic.
type Client struct {
	mu       sync.Mutex
	client   *mpd.Client
	addr     string
	password string
}

// NewClient creates an MPD client for the given address ("host:port").
func NewClient(addr, password string) *Client {
	return &Client{addr: addr, password: password}
}

// Connect establishes the connection to MPD.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	log.Info().Str("addr", c.addr).Msg("Connecting to MPD")

	client, err := mpd.DialAuthenticated("tcp", c.addr, c.password)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	c.client = client
	return nil
}

func (c *Client) ensureConnectedLocked() error {
	if c.client == nil {
		return c.connectLocked()
	}
	if err := c.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting")
		c.client.Close()
		c.client = nil
		return c.connectLocked()
	}
	return nil
}

// Close closes the MPD connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// Ping checks if the connection is alive.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return fmt.Errorf("not connected")
	}
	return c.client.Ping()
}

// ListTracks lists the whole MPD database as tracks of the given source.
func (c *Client) ListTracks(sourceID collection.SourceID) ([]collection.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnectedLocked(); err != nil {
		return nil, err
	}

	entries, err := c.client.ListAllInfo("/")
	if err != nil {
		return nil, fmt.Errorf("failed to list MPD database: %w", err)
	}

	tracks := make([]collection.Track, 0, len(entries))
	for _, attrs := range entries {
		if attrs["file"] == "" {
			continue
		}
		tracks = append(tracks, attrsToTrack(sourceID, attrs))
	}

	log.Info().Str("source", string(sourceID)).Int("tracks", len(tracks)).Msg("MPD listing complete")
	return tracks, nil
}

// attrsToTrack maps one MPD song entry to a library track. Absent tags are
// just empty strings; the title falls back to the file name.
func attrsToTrack(sourceID collection.SourceID, attrs map[string]string) collection.Track {
	file := attrs["file"]

	title := attrs["Title"]
	if title == "" {
		title = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}

	disc := parseNumber(attrs["Disc"])
	if disc == 0 {
		disc = 1
	}

	return collection.Track{
		ID:       mpdTrackID(sourceID, file),
		SourceID: sourceID,
		Path:     file,
		Tags: collection.Tags{
			Artist: attrs["Artist"],
			Title:  title,
			Album:  attrs["Album"],
			Genre:  attrs["Genre"],
			Year:   parseNumber(attrs["Date"]),
			Disc:   disc,
			Nr:     parseNumber(attrs["Track"]),
		},
	}
}

// parseNumber parses MPD numeric tags, which can be "7", "7/12" or
// "2003-04-01".
func parseNumber(v string) int {
	if v == "" {
		return 0
	}
	if idx := strings.IndexAny(v, "/-"); idx > 0 {
		v = v[:idx]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func mpdTrackID(sourceID collection.SourceID, file string) string {
	hash := md5.Sum([]byte(string(sourceID) + "\x00" + file))
	return hex.EncodeToString(hash[:])
}
