// Package ratelimit paces calls to GitHub and to IRC targets.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter grants at most one permit per interval.
type Limiter struct {
	limiter *rate.Limiter
}

func New(interval time.Duration) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a permit is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Keyed keeps an independent Limiter per key, so that a busy key never delays another one.
type Keyed struct {
	interval time.Duration
	mu       sync.Mutex
	limiters map[string]*Limiter
}

func NewKeyed(interval time.Duration) *Keyed {
	return &Keyed{
		interval: interval,
		limiters: make(map[string]*Limiter),
	}
}

func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

func (k *Keyed) get(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = New(k.interval)
		k.limiters[key] = l
	}
	return l
}

// Seconds converts a positive number of seconds into a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
