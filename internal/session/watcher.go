// Package session runs the client-side session timers: a warning shortly
// before the token expires and an expiry callback when it does. Activity
// resets both.
package session

import (
	"context"
	"sync"
	"time"
)

// Watcher schedules the warning at duration-lead after the last activity and
// the expiry lead later. Callbacks run on their own goroutine.
type Watcher struct {
	duration  time.Duration
	lead      time.Duration
	onWarning func(remaining time.Duration)
	onExpire  func()

	mu       sync.Mutex
	gen      int // bumped on every reset; stale timers compare and bail
	warn     *time.Timer
	expire   *time.Timer
	finished bool
	expired  bool
	done     chan struct{}
}

// NewWatcher builds a watcher. A lead longer than duration is clamped, so the
// warning fires immediately. Either callback may be nil.
func NewWatcher(duration, lead time.Duration, onWarning func(remaining time.Duration), onExpire func()) *Watcher {
	if lead > duration {
		lead = duration
	}
	if lead < 0 {
		lead = 0
	}
	return &Watcher{
		duration:  duration,
		lead:      lead,
		onWarning: onWarning,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
}

// Start arms both timers. Cancelling ctx stops the watcher.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.arm()
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.done:
		}
	}()
}

// Touch records activity and restarts both countdowns. It reports false once
// the session has expired or the watcher was stopped.
func (w *Watcher) Touch() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return false
	}
	w.arm()
	return true
}

// Stop cancels both timers without calling onExpire. Safe to call repeatedly.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.finish(false)
}

// Expired reports whether the expiry callback has fired.
func (w *Watcher) Expired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expired
}

// Done is closed when the session expires or the watcher stops.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// arm must be called with w.mu held.
func (w *Watcher) arm() {
	w.stopTimers()
	w.gen++
	gen := w.gen

	w.warn = time.AfterFunc(w.duration-w.lead, func() {
		w.mu.Lock()
		if w.finished || w.gen != gen {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()
		if w.onWarning != nil {
			w.onWarning(w.lead)
		}
	})
	w.expire = time.AfterFunc(w.duration, func() {
		w.mu.Lock()
		if w.finished || w.gen != gen {
			w.mu.Unlock()
			return
		}
		w.finish(true)
		w.mu.Unlock()
		if w.onExpire != nil {
			w.onExpire()
		}
	})
}

// finish must be called with w.mu held.
func (w *Watcher) finish(expired bool) {
	if w.finished {
		return
	}
	w.finished = true
	w.expired = expired
	w.stopTimers()
	close(w.done)
}

func (w *Watcher) stopTimers() {
	if w.warn != nil {
		w.warn.Stop()
	}
	if w.expire != nil {
		w.expire.Stop()
	}
}
