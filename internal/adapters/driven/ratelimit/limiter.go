// Package ratelimit throttles calls to remote AI providers. A token bucket
// caps the sustained request rate and a provider's Retry-After pauses all
// callers sharing the limiter.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// DefaultBackoff applies when a provider rate-limits without Retry-After.
const DefaultBackoff = 30 * time.Second

// Limiter is a token bucket with an optional backoff window.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter from settings. A non-positive rate disables the
// token bucket, leaving only Retry-After backoff.
func New(cfg domain.RateLimitSettings) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)

	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Wait blocks until a request may be sent.
func (l *Limiter) Wait(ctx context.Context) error {
	if d := l.backoff(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.limiter.Wait(ctx)
}

func (l *Limiter) backoff() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt.Sub(l.now())
}

// Observe inspects the outcome of a call. A rate-limit rejection opens a
// backoff window and the error is returned wrapped with domain.ErrRateLimited.
func (l *Limiter) Observe(err error) error {
	var remote *driven.RemoteError
	if !errors.As(err, &remote) || !remote.RateLimited() {
		return err
	}

	wait := remote.RetryAfter
	if wait <= 0 {
		wait = DefaultBackoff
	}

	l.mu.Lock()
	if until := l.now().Add(wait); until.After(l.retryAt) {
		l.retryAt = until
	}
	l.mu.Unlock()

	return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
}
