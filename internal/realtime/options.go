package realtime

import (
	"time"

	"livechat/internal/config"
	"livechat/internal/obs"
	"livechat/pkg/schedule"
	"livechat/pkg/websocket"
)

// Option configures a Client.
type Option func(*Client)

// WithConfig replaces every setting given by earlier options with cfg.
func WithConfig(cfg config.Realtime) Option {
	return func(c *Client) {
		c.cfg = cfg
	}
}

// WithDialer sets the transport factory. The default dials with gorilla/websocket.
func WithDialer(d websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithScheduler sets the timer source for reconnect and typing windows.
func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Client) {
		c.timers = s
	}
}

// WithLogger sets the logger. The default forwards to the logs package.
func WithLogger(l obs.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBaseURL sets the REST base URL the websocket endpoint is derived from.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = baseURL
	}
}

// WithPath sets the websocket path appended to the base URL.
func WithPath(path string) Option {
	return func(c *Client) {
		c.cfg.Path = path
	}
}

// WithReconnect sets the reconnection policy.
func WithReconnect(p ReconnectPolicy) Option {
	return func(c *Client) {
		c.cfg.ReconnectBase = p.Base
		c.cfg.ReconnectCap = p.Cap
		c.cfg.ReconnectMaxAttempts = p.MaxAttempts
		c.cfg.ReconnectJitter = p.Jitter
	}
}

// WithResubscribeOnReconnect replays desired topics after every successful open.
func WithResubscribeOnReconnect(enabled bool) Option {
	return func(c *Client) {
		c.cfg.Resubscribe = enabled
	}
}

// WithTypingWindows sets the local idle window and the remote expiry.
func WithTypingWindows(idle, expiry time.Duration) Option {
	return func(c *Client) {
		c.cfg.TypingIdle = idle
		c.cfg.TypingExpiry = expiry
	}
}
