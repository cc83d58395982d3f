// Package ratelimit implements a fixed-window request counter keyed by client
// identity. The limiter is an injected, lifecycle-scoped value: callers create
// it at startup, start the sweep, and stop it on shutdown.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window counter safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	max    int
	window time.Duration

	stopOnce sync.Once
	stop     chan struct{}

	now func() time.Time // injectable clock for tests
}

// New creates a Limiter allowing max calls per window duration.
func New(max int, windowDur time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		max:     max,
		window:  windowDur,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
}

// Allow records a call for key and reports whether it is within the window
// budget. Expired windows reset on first touch.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if w.count < l.max {
		w.count++
		return true
	}
	return false
}

// Start launches the periodic sweep that evicts expired windows, bounding
// memory growth. It runs until Stop is called.
func (l *Limiter) Start() {
	ticker := time.NewTicker(l.window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// size returns the tracked key count; test hook.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
