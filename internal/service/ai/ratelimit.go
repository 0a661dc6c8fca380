package ai

import (
	"sync"
	"time"
)

// Clock abstracts time for the limiter so tests can slide the window
// without timers.
type Clock func() time.Time

// RateLimiter is a process-wide sliding-window gate on outbound LLM calls.
// When exhausted the caller degrades to its offline fallback for that turn;
// the limiter never surfaces an error to the end of the pipeline.
type RateLimiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	stamps   []time.Time
	now      Clock

	denied int64
}

// NewRateLimiter creates a limiter allowing capacity calls per window.
// A nil clock uses wall time.
func NewRateLimiter(capacity int, window time.Duration, clock Clock) *RateLimiter {
	if capacity <= 0 {
		capacity = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		capacity: capacity,
		window:   window,
		stamps:   make([]time.Time, 0, capacity),
		now:      clock,
	}
}

// Allow records one call if the window has room. A nil limiter always allows.
func (l *RateLimiter) Allow() bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.stamps[:0]
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.stamps = kept

	if len(l.stamps) >= l.capacity {
		l.denied++
		return false
	}

	l.stamps = append(l.stamps, now)
	return true
}

// Denied returns how many calls were refused, for diagnostics.
func (l *RateLimiter) Denied() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.denied
}
