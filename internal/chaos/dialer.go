package chaos

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"livechat/pkg/exception"
	"livechat/pkg/websocket"

	"github.com/yanun0323/errors"
)

// ErrInjected marks failures produced by the chaos dialer.
var ErrInjected = errors.New("chaos: injected failure")

// Config controls fault injection on websocket transports.
type Config struct {
	Seed int64
	// FailDialRate is the probability that an open fails before connecting.
	FailDialRate float64
	// DropRate is the probability that an inbound frame cuts the connection instead of being delivered.
	DropRate float64
	// DuplicateRate is the probability that an inbound frame is delivered twice.
	DuplicateRate float64
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.FailDialRate < 0 || c.FailDialRate > 1 {
		return errors.Wrapf(exception.ErrConfig, "failDialRate must be between 0 and 1, got %v", c.FailDialRate)
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.Wrapf(exception.ErrConfig, "dropRate must be between 0 and 1, got %v", c.DropRate)
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return errors.Wrapf(exception.ErrConfig, "duplicateRate must be between 0 and 1, got %v", c.DuplicateRate)
	}
	return nil
}

// Enabled reports whether any fault is configured.
func (c Config) Enabled() bool {
	return c.FailDialRate > 0 || c.DropRate > 0 || c.DuplicateRate > 0
}

// Dialer wraps another Dialer and injects connection faults.
type Dialer struct {
	inner websocket.Dialer
	cfg   Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDialer creates a chaos dialer around inner.
func NewDialer(inner websocket.Dialer, cfg Config) (*Dialer, error) {
	if inner == nil {
		return nil, exception.ErrNilInstance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Dialer{
		inner: inner,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (d *Dialer) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64() < rate
}

func (d *Dialer) Open(ctx context.Context, endpoint string, l websocket.Listener) websocket.Transport {
	if d.roll(d.cfg.FailDialRate) {
		t := &failedTransport{}
		go func() {
			err := errors.Wrap(ErrInjected, "dial "+endpoint)
			l.OnError(err)
			l.OnClose(websocket.CloseAbnormal, err)
		}()
		return t
	}

	wrapped := &listener{d: d, inner: l}
	t := d.inner.Open(ctx, endpoint, wrapped)
	wrapped.setTransport(t)
	return t
}

type listener struct {
	d     *Dialer
	inner websocket.Listener

	mu sync.Mutex
	t  websocket.Transport
}

func (l *listener) setTransport(t websocket.Transport) {
	l.mu.Lock()
	l.t = t
	l.mu.Unlock()
}

func (l *listener) transport() websocket.Transport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t
}

func (l *listener) OnOpen() { l.inner.OnOpen() }

func (l *listener) OnFrame(msgType websocket.MessageType, payload []byte) {
	if l.d.roll(l.d.cfg.DropRate) {
		if t := l.transport(); t != nil {
			_ = t.Close(websocket.CloseGoingAway, "chaos drop")
		}
		return
	}
	l.inner.OnFrame(msgType, payload)
	if l.d.roll(l.d.cfg.DuplicateRate) {
		l.inner.OnFrame(msgType, payload)
	}
}

func (l *listener) OnError(err error) { l.inner.OnError(err) }

func (l *listener) OnClose(code websocket.CloseCode, err error) { l.inner.OnClose(code, err) }

type failedTransport struct{}

func (failedTransport) Send(websocket.MessageType, []byte) error {
	return exception.ErrNotConnected
}

func (failedTransport) Close(websocket.CloseCode, string) error { return nil }
