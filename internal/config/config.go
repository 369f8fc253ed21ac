// Package config loads the server configuration from a TOML file. Every
// setting has a default so the server starts with no file at all.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Port      int    `toml:"port"`
	Database  string `toml:"database"`
	StaticDir string `toml:"static_dir"`

	Collection CollectionConfig `toml:"collection"`
	Sources    []SourceConfig   `toml:"source"`
}

// CollectionConfig sets the initial sort preferences.
type CollectionConfig struct {
	SortBy        string `toml:"sort_by"`
	SortDirection string `toml:"sort_direction"`
}

// SourceConfig seeds a track source on first start. Once sources are
// persisted, the stored set wins over the file.
type SourceConfig struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"` // "fs" or "mpd"
	Root     string `toml:"root"` // directory for fs, host:port for mpd
	Password string `toml:"password,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:      3000,
		Database:  "data/ongaku.db",
		StaticDir: "web",
		Collection: CollectionConfig{
			SortBy:        "artist",
			SortDirection: "asc",
		},
	}
}

// Load reads the configuration file at path, falling back to defaults for
// absent settings. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.Kind != "fs" && s.Kind != "mpd" {
			return fmt.Errorf("source %q: invalid kind %q", s.Name, s.Kind)
		}
		if s.Root == "" {
			return fmt.Errorf("source %q: root is required", s.Name)
		}
	}
	return nil
}
