package websocket

import (
	"math/rand"
	"time"
)

// DefaultBackoff matches the chat client defaults: 1s unit doubling per attempt, capped at 10s.
func DefaultBackoff() Backoff {
	return Backoff{
		Min:    time.Second,
		Max:    10 * time.Second,
		Factor: 2.0,
	}
}

// Delay returns min(Min * Factor^attempt, Max) without jitter.
// Attempt 0 yields Min.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	min := b.Min
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	max := b.Max
	if max <= 0 {
		max = 5 * time.Second
	}
	factor := b.Factor
	if factor <= 1 {
		factor = 2.0
	}

	wait := min
	for i := 0; i < attempt; i++ {
		next := time.Duration(float64(wait) * factor)
		if next >= max || next <= 0 {
			return max
		}
		wait = next
	}
	if wait > max {
		return max
	}
	return wait
}

// Next returns Delay(attempt) with jitter applied.
func (b Backoff) Next(attempt int) time.Duration {
	wait := b.Delay(attempt)
	if b.Jitter <= 0 {
		return wait
	}
	jitter := b.Jitter
	if jitter > 1 {
		jitter = 1
	}
	delta := float64(wait) * jitter
	return wait - time.Duration(delta) + time.Duration(rand.Float64()*2*delta)
}
