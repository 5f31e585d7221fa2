// Package httputil provides HTTP utilities shared by the registry clients.
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] trigger retries; everything
// else is returned immediately. Backoff is exponential:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &result)
//	})
//
// # Defaults
//
// [RetryWithBackoff] uses 3 attempts with a 1 second initial delay,
// doubling after each failed attempt.
package httputil
