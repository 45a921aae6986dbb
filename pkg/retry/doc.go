// Package retry repeats transient failures with a backoff between tries.
//
// Only network errors, rate limiting and server errors are retried by
// default; a 404 or a cancelled context ends the loop at once.
//
//	body, err := retry.DoWithResult(ctx, retry.Policy{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(time.Second),
//	}, func() ([]byte, error) {
//		return fetch(ctx, url)
//	})
package retry
