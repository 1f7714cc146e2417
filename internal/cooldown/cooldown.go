// Package cooldown enforces a minimum interval between successive writes
// by the same viewer.
package cooldown

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// DefaultWindow is the minimum gap between two submissions by one viewer
const DefaultWindow = 10 * time.Second

// WaitError is returned when a submission arrives inside the cool-down window
type WaitError struct {
	Remaining time.Duration
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("please wait %d seconds before posting again", e.Seconds())
}

// Seconds is the remaining wait in whole seconds, rounded up
func (e *WaitError) Seconds() int {
	return int(math.Ceil(e.Remaining.Seconds()))
}

// Remaining returns how long a viewer whose last submission happened at
// last must still wait at now. Zero means a new submission is allowed.
func Remaining(last, now time.Time, window time.Duration) time.Duration {
	if last.IsZero() || window <= 0 {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}

// Check returns a *WaitError while now is inside the window that started at last
func Check(last, now time.Time, window time.Duration) error {
	if rem := Remaining(last, now, window); rem > 0 {
		return &WaitError{Remaining: rem}
	}
	return nil
}

// Limiter tracks the last accepted submission per key
type Limiter interface {
	// Acquire records a submission for key, or returns a *WaitError
	// without recording anything when key is still cooling down.
	Acquire(ctx context.Context, key string) error
	// Release forgets the submission recorded by the last Acquire,
	// used when the write it guarded did not happen.
	Release(ctx context.Context, key string) error
}

// memoryLimiter keeps timestamps in process memory
type memoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

// NewMemoryLimiter creates a Limiter backed by a map
func NewMemoryLimiter(window time.Duration) Limiter {
	return newMemoryLimiter(window, time.Now)
}

func newMemoryLimiter(window time.Duration, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		window: window,
		last:   make(map[string]time.Time),
		now:    now,
	}
}

func (l *memoryLimiter) Acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if err := Check(l.last[key], now, l.window); err != nil {
		return err
	}
	l.last[key] = now

	// Drop stale keys so the map does not grow with every viewer ever seen
	if len(l.last) > 10000 {
		for k, t := range l.last {
			if now.Sub(t) >= l.window {
				delete(l.last, k)
			}
		}
	}
	return nil
}

func (l *memoryLimiter) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, key)
	return nil
}
