package realtime

import (
	"time"

	"livechat/internal/config"
	"livechat/pkg/websocket"
)

// ReconnectPolicy bounds automatic reconnection after an unexpected close.
type ReconnectPolicy struct {
	// Base is the delay unit, doubled per attempt.
	Base time.Duration
	// Cap is the longest delay between attempts.
	Cap time.Duration
	// MaxAttempts is the number of retries before giving up.
	MaxAttempts int
	// Jitter randomizes each delay by up to this fraction. Zero keeps delays exact.
	Jitter float64
}

// DefaultReconnectPolicy retries five times: 2s, 4s, 8s, 10s, 10s.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Base:        config.DefaultReconnectBase,
		Cap:         config.DefaultReconnectCap,
		MaxAttempts: config.DefaultReconnectMaxAttempts,
	}
}

func (p ReconnectPolicy) withDefaults() ReconnectPolicy {
	def := DefaultReconnectPolicy()
	if p.Base <= 0 {
		p.Base = def.Base
	}
	if p.Cap <= 0 {
		p.Cap = def.Cap
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	return p
}

// Delay is the wait before the given 1-based attempt: min(Base*2^attempt, Cap).
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	return websocket.Backoff{Min: p.Base, Max: p.Cap, Factor: 2, Jitter: p.Jitter}.Next(attempt)
}

// Exhausted reports whether attempts already reached the ceiling.
func (p ReconnectPolicy) Exhausted(attempts int) bool {
	return attempts >= p.withDefaults().MaxAttempts
}
