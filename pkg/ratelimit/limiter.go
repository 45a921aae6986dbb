package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for pacing outbound requests
type Limiter interface {
	// Allow reports whether a request may proceed right now without waiting
	Allow() bool
	// Wait blocks until the next request may proceed or ctx is done
	Wait(ctx context.Context) error
	// Done marks the end of a request; the delay before the next one counts from here
	Done()
	// Reset forgets previous requests so the next one proceeds immediately
	Reset()
}

// Interval enforces a fixed pause after every request: the next Wait returns
// no earlier than delay after the previous request's Done, and no earlier than
// delay after its start when Done is never called.
type Interval struct {
	delay   time.Duration
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewInterval creates a limiter allowing one request per delay.
// A zero or negative delay disables pacing.
func NewInterval(delay time.Duration) *Interval {
	iv := &Interval{delay: delay}
	iv.limiter = iv.newLimiter()
	return iv
}

func (iv *Interval) newLimiter() *rate.Limiter {
	if iv.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(iv.delay), 1)
}

func (iv *Interval) current() *rate.Limiter {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.limiter
}

// Allow checks if a request can proceed
func (iv *Interval) Allow() bool {
	return iv.current().Allow()
}

// Wait blocks until the delay since the previous request has elapsed
func (iv *Interval) Wait(ctx context.Context) error {
	return iv.current().Wait(ctx)
}

// Done restarts the delay at the moment the request finished
func (iv *Interval) Done() {
	if iv.delay <= 0 {
		return
	}
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.limiter = iv.newLimiter()
	iv.limiter.Allow()
}

// Reset resets the limiter state
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.limiter = iv.newLimiter()
}

type unlimited struct{}

// Unlimited returns a Limiter that never blocks.
func Unlimited() Limiter {
	return unlimited{}
}

func (unlimited) Allow() bool { return true }

func (unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

func (unlimited) Done() {}

func (unlimited) Reset() {}
