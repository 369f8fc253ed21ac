package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Debouncer collapses bursts of persistence triggers into a single save per
// window. Toggling ten favourites in a row writes the table once.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	save    func() error
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer creates a debouncer calling save after the given window.
func NewDebouncer(window time.Duration, save func() error) *Debouncer {
	return &Debouncer{window: window, save: save}
}

// Trigger schedules a save. Repeated triggers within the window reset it.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	if err := d.save(); err != nil {
		log.Error().Err(err).Msg("Debounced save failed")
	}
}

// Flush saves immediately if a trigger is pending. Called on shutdown so no
// mutation is lost to the window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	pending := d.pending
	d.pending = false
	d.mu.Unlock()

	if pending {
		if err := d.save(); err != nil {
			log.Error().Err(err).Msg("Flush save failed")
		}
	}
}

// Stop flushes pending work and prevents further saves.
func (d *Debouncer) Stop() {
	d.Flush()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
