// Package ratelimit spaces out calls to remote APIs.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate blocks until the next remote call may start.
type Gate interface {
	Wait(ctx context.Context) error
}

// FixedInterval lets one call through per interval. The first call passes
// immediately.
type FixedInterval struct {
	limiter *rate.Limiter
}

// NewFixedInterval returns Unlimited when interval is not positive.
func NewFixedInterval(interval time.Duration) Gate {
	if interval <= 0 {
		return Unlimited()
	}
	return &FixedInterval{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (g *FixedInterval) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

type unlimited struct{}

func Unlimited() Gate { return unlimited{} }

func (unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
