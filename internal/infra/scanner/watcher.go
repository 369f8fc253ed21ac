package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/icidasset/ongaku-ry/internal/domain/collection"
)

// Watcher observes source roots and reports, debounced, which sources need a
// rescan. Events arriving in bursts (file copies, downloads) collapse into a
// single callback per window.
type Watcher struct {
	fw       *fsnotify.Watcher
	window   time.Duration
	onRescan func([]collection.SourceID)

	mu      sync.Mutex
	roots   map[string]collection.SourceID // absolute root -> source
	pending map[collection.SourceID]bool
	timer   *time.Timer
	stopped bool
}

// NewWatcher creates a watcher firing onRescan after the debounce window.
func NewWatcher(window time.Duration, onRescan func([]collection.SourceID)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		window:   window,
		onRescan: onRescan,
		roots:    make(map[string]collection.SourceID),
		pending:  make(map[collection.SourceID]bool),
	}, nil
}

// WatchRoot registers a source root and all its current subdirectories.
// Directories created later are picked up from create events.
func (w *Watcher) WatchRoot(sourceID collection.SourceID, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.roots[abs] = sourceID
	w.mu.Unlock()

	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != abs {
			return filepath.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Cannot watch directory")
		}
		return nil
	})
}

// Run consumes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	go func() {
		log.Info().Msg("Library watcher started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Library watcher stopped")
				return
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Watcher error")
			}
		}
	}()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	sourceID, ok := w.sourceForPath(event.Name)
	if !ok {
		return
	}

	// New directories join the watch set so nested additions keep arriving.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.fw.Add(event.Name)
		}
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.pending[sourceID] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, w.flush)
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	ids := make([]collection.SourceID, 0, len(w.pending))
	for id := range w.pending {
		ids = append(ids, id)
	}
	w.pending = make(map[collection.SourceID]bool)
	w.mu.Unlock()

	if len(ids) > 0 && w.onRescan != nil {
		w.onRescan(ids)
	}
}

// sourceForPath resolves an event path to the source owning it via the
// longest matching root prefix.
func (w *Watcher) sourceForPath(path string) (collection.SourceID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var best string
	var bestID collection.SourceID
	for root, id := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) || path == root {
			if len(root) > len(best) {
				best = root
				bestID = id
			}
		}
	}
	return bestID, best != ""
}

// Close stops the watcher and prevents further callbacks.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.fw.Close()
}
