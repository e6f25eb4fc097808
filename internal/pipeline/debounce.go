package pipeline

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer collects events until none arrived for the wait duration, then
// hands the batch to fn.
type debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	fn      func([]fsnotify.Event)
	pending []fsnotify.Event
	timer   *time.Timer
}

func newDebouncer(wait time.Duration, fn func([]fsnotify.Event)) *debouncer {
	return &debouncer{wait: wait, fn: fn}
}

func (d *debouncer) addEvent(evt fsnotify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, evt)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	events := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	if len(events) > 0 {
		d.fn(events)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
