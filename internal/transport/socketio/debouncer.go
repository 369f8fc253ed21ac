package socketio

import (
	"sync"
	"time"
)

// BroadcastDebouncer collapses rapid change notifications into batched
// broadcasts. A library rescan replaces tracks, sources and auto playlists in
// quick succession; clients should see one pushCollection, not five.
type BroadcastDebouncer struct {
	window             time.Duration
	collectionCallback func()
	stateCallback      func()

	mu                sync.Mutex
	pendingCollection bool
	pendingState      bool
	timer             *time.Timer
	stopped           bool
}

// NewBroadcastDebouncer creates a debouncer with the given window duration.
// collectionCallback fires for collection view changes, stateCallback for
// playback state changes.
func NewBroadcastDebouncer(window time.Duration, collectionCallback, stateCallback func()) *BroadcastDebouncer {
	return &BroadcastDebouncer{
		window:             window,
		collectionCallback: collectionCallback,
		stateCallback:      stateCallback,
	}
}

// TriggerCollection records that the collection view changed. The broadcast is
// deferred until the window elapses without further triggers.
func (d *BroadcastDebouncer) TriggerCollection() {
	d.trigger(func() { d.pendingCollection = true })
}

// TriggerState records that the playback state changed.
func (d *BroadcastDebouncer) TriggerState() {
	d.trigger(func() { d.pendingState = true })
}

func (d *BroadcastDebouncer) trigger(mark func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	mark()

	// Reset the timer
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires callbacks for any pending flags and resets them.
func (d *BroadcastDebouncer) flush() {
	d.mu.Lock()
	doCollection := d.pendingCollection
	doState := d.pendingState
	d.pendingCollection = false
	d.pendingState = false
	d.mu.Unlock()

	if doCollection && d.collectionCallback != nil {
		d.collectionCallback()
	}
	if doState && d.stateCallback != nil {
		d.stateCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pendingCollection = false
	d.pendingState = false
}
