package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
)

// Window is a fixed-window counter kept in process memory.
type Window struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	mu    sync.Mutex
	items map[string]*windowEntry
}

type windowEntry struct {
	start time.Time
	count int
}

func NewWindow(limit int, window time.Duration, c clock.Clock) *Window {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Window{
		limit:  limit,
		window: window,
		clock:  c,
		items:  make(map[string]*windowEntry),
	}
}

func (w *Window) Allow(_ context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}

	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sweep(now)
	entry := w.items[key]
	if entry == nil {
		entry = &windowEntry{start: now}
		w.items[key] = entry
	}

	if entry.count >= w.limit {
		return Result{
			Allowed:    false,
			Limit:      w.limit,
			RetryAfter: entry.start.Add(w.window).Sub(now),
		}, nil
	}

	entry.count++
	return Result{Allowed: true, Limit: w.limit, Remaining: w.limit - entry.count}, nil
}

// sweep drops windows that have ended. Callers hold mu.
func (w *Window) sweep(now time.Time) {
	for key, entry := range w.items {
		if now.Sub(entry.start) >= w.window {
			delete(w.items, key)
		}
	}
}
