// Package httputil provides retry helpers for remote data sources.
//
// # Retry
//
// [Retry] re-runs an operation that failed with a transient error. Callers
// mark transient failures by wrapping them in [RetryableError]:
//
//   - network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other error is returned immediately. The delay doubles after each
// failed attempt and waiting stops as soon as the context is cancelled:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetchBlock(ctx, height)
//	})
//
// [RetryWithBackoff] uses the defaults of the block client: 3 attempts
// starting at 1 second.
package httputil
