// Package ratelimit throttles login attempts per client key.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing limiter cannot answer.
var ErrUnavailable = errors.New("rate limiter unavailable")

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether one more attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
