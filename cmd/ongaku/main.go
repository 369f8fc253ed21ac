// Package main is the entry point for the Ongaku music server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/icidasset/ongaku-ry/internal/config"
	"github.com/icidasset/ongaku-ry/internal/domain/collection"
	"github.com/icidasset/ongaku-ry/internal/domain/sources"
	"github.com/icidasset/ongaku-ry/internal/version"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "config.toml", "Path to the TOML configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	staticDir := flag.String("static", "", "Directory to serve static files from (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}

	versionInfo := version.GetInfo()
	log.Info().Msgf("%s starting", versionInfo.String())
	log.Info().
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("sources", len(cfg.Sources)).
		Msg("Configuration")

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.watcher.Run(ctx)
	go a.scanAll()

	// Setup HTTP server
	mux := http.NewServeMux()

	mux.Handle("/socket.io/", a.socket)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Album art endpoint: embedded pictures of filesystem tracks.
	mux.HandleFunc("/albumart", func(w http.ResponseWriter, r *http.Request) {
		sourceID := collection.SourceID(r.URL.Query().Get("source"))
		relPath := r.URL.Query().Get("path")
		if sourceID == "" || relPath == "" {
			http.Error(w, "source and path parameters required", http.StatusBadRequest)
			return
		}

		src, ok := a.findSource(sourceID)
		if !ok || src.Kind != sources.KindFilesystem {
			http.Error(w, "unknown source", http.StatusNotFound)
			return
		}

		// filepath.Join cleans the path; a cleaned path escaping the root
		// starts with "..".
		abs := filepath.Join(src.Root, filepath.FromSlash(relPath))
		if rel, err := filepath.Rel(src.Root, abs); err != nil || strings.HasPrefix(rel, "..") {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		data, mime, err := a.scanner.ReadPicture(abs)
		if err != nil {
			log.Debug().Err(err).Str("path", relPath).Msg("Album art not found")
			http.Error(w, "album art not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", mime)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(data)
	})

	// Serve static files if directory specified (SPA mode)
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			log.Info().Str("dir", cfg.StaticDir).Msg("Serving static files")
			fs := http.FileServer(http.Dir(cfg.StaticDir))
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				path := filepath.Join(cfg.StaticDir, r.URL.Path)
				if r.URL.Path == "/" {
					path = filepath.Join(cfg.StaticDir, "index.html")
				}
				if _, err := os.Stat(path); os.IsNotExist(err) {
					// SPA routing: unknown paths fall back to index.html
					http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
					return
				}
				fs.ServeHTTP(w, r)
			})
		}
	}

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
