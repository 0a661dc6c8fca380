package ai

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimiterExhaustsAtCapacity(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewRateLimiter(3, time.Minute, clock.Now)

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if limiter.Allow() {
		t.Fatal("fourth call within window should be denied")
	}
	if limiter.Denied() != 1 {
		t.Fatalf("denied count = %d, want 1", limiter.Denied())
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewRateLimiter(2, time.Minute, clock.Now)

	limiter.Allow()
	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("expected denial at capacity")
	}

	clock.Advance(61 * time.Second)
	if !limiter.Allow() {
		t.Fatal("expected allowance after window slid past old stamps")
	}
}

func TestNilRateLimiterAlwaysAllows(t *testing.T) {
	var limiter *RateLimiter
	if !limiter.Allow() {
		t.Fatal("nil limiter must allow")
	}
}
