package mediawiki

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultDelay is the minimum gap between two API calls.
	DefaultDelay = 500 * time.Millisecond

	// DefaultRetryAfter is the pause applied when the wiki asks us to slow
	// down without saying for how long.
	DefaultRetryAfter = 5 * time.Second

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter paces calls across every wiki of the family.
// It combines a token bucket with pauses requested by the server.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing one call per delay.
// A zero delay disables proactive throttling.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until a request can be made. Pauses requested by the server
// are honoured first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// Pause delays every subsequent request by d.
func (r *RateLimiter) Pause(d time.Duration) {
	if d <= 0 {
		d = DefaultRetryAfter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// RetryAt returns when the current server-requested pause ends.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

// retryAfter parses the Retry-After header, in seconds, falling back to
// DefaultRetryAfter.
func retryAfter(resp *http.Response) time.Duration {
	if resp != nil {
		if v := resp.Header.Get(HeaderRetryAfter); v != "" {
			if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return DefaultRetryAfter
}
