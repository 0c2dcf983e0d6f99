package util

import (
	"context"

	"golang.org/x/time/rate"
)

// NewRateLimiter returns nil when requestsPerSecond is not positive, meaning unlimited
func NewRateLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

func WaitForLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}

	return limiter.Wait(ctx)
}
