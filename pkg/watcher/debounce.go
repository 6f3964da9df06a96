// Package watcher monitors the active data source file for changes using
// fsnotify, with a polling fallback for filesystems where inotify events are
// unreliable. Rapid successive writes are debounced so one save produces one
// reload.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration collapses bursts of writes into one notification.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer delays a callback until a quiet period has passed. Every
// Trigger restarts the timer; only the last callback of a burst runs.
type Debouncer struct {
	d     time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period. A
// non-positive duration falls back to DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{d: d}
}

// Duration returns the configured quiet period.
func (b *Debouncer) Duration() time.Duration {
	return b.d
}

// Trigger schedules fn after the quiet period, replacing any pending call.
func (b *Debouncer) Trigger(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, fn)
}

// Cancel drops any pending call.
func (b *Debouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
