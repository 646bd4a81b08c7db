package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff()
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: -1, want: time.Second},
		{attempt: 0, want: time.Second},
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
		{attempt: 4, want: 10 * time.Second},
		{attempt: 5, want: 10 * time.Second},
		{attempt: 200, want: 10 * time.Second},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, b.Delay(c.attempt), "attempt %d", c.attempt)
	}
}

func TestBackoffNextJitterBounds(t *testing.T) {
	b := Backoff{Min: time.Second, Max: 10 * time.Second, Factor: 2, Jitter: 0.5}
	for range 100 {
		d := b.Next(2)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 6*time.Second)
	}
}

func TestBackoffZeroValueUsesFallbacks(t *testing.T) {
	var b Backoff
	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 5*time.Second, b.Next(10))
}
