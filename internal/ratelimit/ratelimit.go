// Package ratelimit throttles account lookups against a remote system.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces SID lookups. The zero value is not usable; call New.
type Limiter struct {
	limiter *rate.Limiter
}

// New allows lookupsPerSecond lookups with a burst of one. Zero or a
// negative value disables throttling.
func New(lookupsPerSecond float64) *Limiter {
	if lookupsPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(lookupsPerSecond), 1),
	}
}

// Wait blocks until the next lookup may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Limit returns the configured lookups per second, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
