// Package ratelimit paces requests sent to the forum.
//
// Interval wraps golang.org/x/time/rate with a burst of one. Calling Done
// once a response has been read restarts the delay, so every request is
// followed by the full pause however long it took. Cached resources never
// reach the limiter; only network calls wait.
//
//	limiter := ratelimit.NewInterval(500 * time.Millisecond)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	defer limiter.Done()
package ratelimit
