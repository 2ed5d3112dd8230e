package telegram

import (
	"context"
	"math/rand"
	"time"
)

// Pacer spaces successive detail lookups by a random delay drawn uniformly
// from [min, max]. The first Wait returns immediately. A Pacer belongs to one
// search run and is not safe for concurrent use.
type Pacer struct {
	min   time.Duration
	max   time.Duration
	rnd   func() float64
	sleep func(ctx context.Context, d time.Duration) error
	calls int
}

// NewPacer creates a pacer for one search run
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{
		min:   min,
		max:   max,
		rnd:   rand.Float64,
		sleep: sleepContext,
	}
}

// Wait blocks until the next lookup may start
func (p *Pacer) Wait(ctx context.Context) error {
	p.calls++
	if p.calls == 1 {
		return ctx.Err()
	}
	return p.sleep(ctx, p.delay())
}

func (p *Pacer) delay() time.Duration {
	if p.max <= p.min {
		return p.min
	}
	return p.min + time.Duration(p.rnd()*float64(p.max-p.min))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
