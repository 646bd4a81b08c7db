package realtime

import (
	"context"
	"sync"
	"time"

	"livechat/internal/bus"
	"livechat/internal/config"
	"livechat/internal/obs"
	"livechat/internal/protocol"
	"livechat/internal/typing"
	"livechat/pkg/schedule"
	"livechat/pkg/websocket"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
)

const (
	msgTransportError   = "WebSocket connection error"
	msgTransportDetails = "Failed to connect to server"
	msgExhausted        = "Connection lost"
	msgExhaustedDetails = "Unable to reconnect to server"
)

// Client is one logical real-time connection for one identity.
//
// Every transition, timer callback and frame dispatch runs on a serial
// executor: handlers of one client never run concurrently and frames are
// dispatched in arrival order. Calls made from inside a handler run after
// the handler returns.
type Client struct {
	cfg     config.Realtime
	policy  ReconnectPolicy
	dialer  websocket.Dialer
	timers  schedule.Scheduler
	log     obs.Logger
	metrics *obs.Metrics

	serial schedule.Serial
	sched  schedule.Scheduler

	notifications *bus.Bus[protocol.Kind, protocol.Notification]
	lifecycle     *bus.Bus[Lifecycle, struct{}]
	subs          *websocket.Subscriptions
	typing        *typing.Sender

	mu        sync.Mutex
	state     State
	identity  string
	session   string
	manual    bool
	exhausted bool
	attempts  int
	gen       uint64
	transport websocket.Transport
	cancel    context.CancelFunc
	reconnect schedule.Timer
	dialedAt  time.Time
}

// New creates an idle Client.
func New(opts ...Option) *Client {
	c := &Client{cfg: config.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.WithDefaults()
	c.policy = ReconnectPolicy{
		Base:        c.cfg.ReconnectBase,
		Cap:         c.cfg.ReconnectCap,
		MaxAttempts: c.cfg.ReconnectMaxAttempts,
		Jitter:      c.cfg.ReconnectJitter,
	}.withDefaults()

	if c.log == nil {
		c.log = obs.DefaultLogger()
	}
	if c.metrics == nil {
		c.metrics = obs.NewMetrics()
	}
	if c.timers == nil {
		c.timers = schedule.Wall()
	}
	if c.dialer == nil {
		c.dialer = websocket.NewDialer(websocket.Option{HandshakeTimeout: c.cfg.HandshakeTimeout})
	}
	c.sched = c.serial.Scheduler(c.timers)

	c.notifications = bus.New[protocol.Kind, protocol.Notification]()
	c.notifications.OnPanic(func(protocol.Kind, any) { c.metrics.IncHandlerPanic() })
	c.lifecycle = bus.New[Lifecycle, struct{}]()
	c.lifecycle.OnPanic(func(Lifecycle, any) { c.metrics.IncHandlerPanic() })
	c.subs = websocket.NewSubscriptions()
	c.typing = typing.NewSender(c.sched, c.cfg.TypingIdle, func(topic string, active bool) {
		c.Send(protocol.TypingSignal{Chat: topic, Active: active})
	})
	return c
}

// Connect opens a connection for identity. It is a no-op while already
// connected or connecting as the same identity. A different identity
// replaces the current connection. An explicit Connect starts a fresh
// reconnect episode.
func (c *Client) Connect(identity string) {
	c.serial.Do(func() { c.connect(identity, true) })
}

// Disconnect closes the connection and cancels pending reconnect and typing
// timers. The client does not reconnect until Connect is called again.
func (c *Client) Disconnect() {
	c.serial.Do(c.disconnect)
}

// Shutdown disconnects like Disconnect and waits until the disconnect has run
// or ctx is done. It must not be called from a handler: the disconnect would
// be queued behind the handler that is waiting for it.
func (c *Client) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	c.serial.Do(func() {
		c.disconnect()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "websocket shutdown")
	}
}

func (c *Client) connect(identity string, explicit bool) {
	if identity == "" {
		c.log.Warnf("websocket connect ignored, empty identity")
		return
	}

	c.mu.Lock()
	if (c.state == StateConnected || c.state == StateConnecting) && c.identity == identity {
		c.mu.Unlock()
		c.log.Debugf("[%s] websocket already %s, user: %s", c.session, c.state, identity)
		return
	}

	endpoint, err := config.Endpoint(c.cfg.BaseURL, c.cfg.Path, identity)
	if err != nil {
		c.mu.Unlock()
		c.log.Errorf("websocket endpoint, err: %+v", err)
		c.raise(protocol.ErrorNotification{Message: msgTransportError, Details: err.Error(), Origin: protocol.OriginTransport})
		return
	}

	prev, prevCancel := c.transport, c.cancel
	if explicit {
		c.attempts = 0
		c.exhausted = false
		if c.reconnect != nil {
			c.reconnect.Stop()
			c.reconnect = nil
		}
	}
	c.gen++
	gen := c.gen
	c.identity = identity
	c.manual = false
	c.state = StateConnecting
	c.session = uuid.NewString()
	c.dialedAt = time.Now()
	session := c.session
	ctx, cancel := context.WithCancel(context.Background())
	c.transport, c.cancel = nil, cancel
	c.mu.Unlock()

	if prev != nil {
		_ = prev.Close(websocket.CloseNormal, "replaced")
		prevCancel()
	}

	c.log.Infof("[%s] connecting to websocket: %s", session, endpoint)
	t := c.dialer.Open(ctx, endpoint, &listener{c: c, gen: gen})

	c.mu.Lock()
	if c.gen == gen {
		c.transport = t
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	_ = t.Close(websocket.CloseNormal, "superseded")
}

func (c *Client) disconnect() {
	c.mu.Lock()
	c.manual = true
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	t, cancel, session := c.transport, c.cancel, c.session
	c.gen++
	c.transport, c.cancel = nil, nil
	live := c.state == StateConnecting || c.state == StateConnected
	if live {
		c.state = StateDisconnecting
	}
	c.mu.Unlock()

	c.typing.Reset()
	if t != nil {
		_ = t.Close(websocket.CloseNormal, "client disconnect")
	}
	if cancel != nil {
		cancel()
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.identity = ""
	c.mu.Unlock()
	c.subs.ClearActive()

	if live {
		c.log.Infof("[%s] websocket disconnected by client", session)
		c.lifecycle.Dispatch(LifecycleDisconnect, struct{}{})
	}
}

func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Client) handleOpen(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	c.attempts = 0
	c.exhausted = false
	session, latency := c.session, time.Since(c.dialedAt)
	resubscribe := c.cfg.Resubscribe
	c.mu.Unlock()

	c.metrics.ObserveConnect(latency)
	c.log.Infof("[%s] websocket connected in %s", session, latency)
	c.lifecycle.Dispatch(LifecycleConnect, struct{}{})
	if resubscribe {
		c.Resubscribe()
	}
}

func (c *Client) handleFrame(gen uint64, payload []byte) {
	if !c.current(gen) {
		return
	}

	n, err := protocol.Decode(payload)
	if err != nil {
		if protocol.IsUnrecognized(err) {
			c.metrics.IncUnrecognized()
			c.log.Warnf("unknown message type, frame: %s", payload)
			return
		}
		c.metrics.IncDecodeFailure()
		c.log.Errorf("failed to parse websocket message, err: %+v", err)
		return
	}
	c.metrics.ObserveNotification(n.Kind())

	switch v := n.(type) {
	case protocol.Connected:
		c.log.Infof("connection acknowledged: %s", v.Message)
	case protocol.SubscriptionConfirmed:
		c.log.Infof("subscription confirmed: %s", v.Message)
		if v.Action == "subscribe" {
			c.subs.MarkActive(v.ChatID)
		}
	case protocol.ErrorNotification:
		c.log.Errorf("server error: %s, details: %s", v.Message, v.Details)
	}
	c.notifications.Dispatch(n.Kind(), n)
}

func (c *Client) handleError(gen uint64, err error) {
	if !c.current(gen) {
		return
	}
	c.metrics.IncTransportError()
	c.log.Errorf("[%s] websocket error: %+v", c.Session(), err)
	c.raise(protocol.ErrorNotification{
		Message: msgTransportError,
		Details: msgTransportDetails,
		Origin:  protocol.OriginTransport,
	})
}

func (c *Client) handleClose(gen uint64, code websocket.CloseCode, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	cancel, session, manual := c.cancel, c.session, c.manual
	c.transport, c.cancel = nil, nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.subs.ClearActive()
	c.typing.Reset()
	if err != nil {
		c.log.Warnf("[%s] websocket disconnected, code: %d, err: %+v", session, code, err)
	} else {
		c.log.Infof("[%s] websocket disconnected, code: %d", session, code)
	}
	c.lifecycle.Dispatch(LifecycleDisconnect, struct{}{})

	if !manual {
		c.scheduleReconnect()
	}
}

func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.manual || c.identity == "" {
		c.mu.Unlock()
		return
	}
	if c.policy.Exhausted(c.attempts) {
		already := c.exhausted
		c.exhausted = true
		c.mu.Unlock()
		if already {
			return
		}
		c.metrics.IncExhausted()
		c.log.Errorf("max reconnection attempts reached")
		c.raise(protocol.ErrorNotification{
			Message: msgExhausted,
			Details: msgExhaustedDetails,
			Origin:  protocol.OriginReconnectExhausted,
		})
		return
	}

	c.attempts++
	attempt := c.attempts
	delay := c.policy.Delay(attempt)
	if c.reconnect != nil {
		c.reconnect.Stop()
	}
	c.reconnect = c.sched.AfterFunc(delay, c.fireReconnect)
	c.mu.Unlock()

	c.metrics.IncReconnectAttempt()
	c.log.Infof("reconnecting in %s (attempt %d/%d)", delay, attempt, c.policy.MaxAttempts)
}

func (c *Client) fireReconnect() {
	c.mu.Lock()
	c.reconnect = nil
	identity, manual := c.identity, c.manual
	c.mu.Unlock()

	if manual || identity == "" {
		return
	}
	c.connect(identity, false)
}

func (c *Client) raise(n protocol.ErrorNotification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = protocol.Timestamp{Time: time.Now().UTC()}
	}
	c.notifications.Dispatch(protocol.KindError, n)
}

// Send writes a control action when connected. Otherwise the action is
// dropped with a diagnostic and Send returns false.
func (c *Client) Send(action protocol.ControlAction) bool {
	payload, err := protocol.Encode(action)
	if err != nil {
		c.log.Warnf("websocket send rejected, err: %+v", err)
		return false
	}

	c.mu.Lock()
	t, connected := c.transport, c.state == StateConnected
	c.mu.Unlock()

	if !connected || t == nil {
		c.metrics.IncDroppedSend()
		c.log.Warnf("websocket is not connected, cannot send: %s", payload)
		return false
	}
	if err := t.Send(websocket.MessageText, payload); err != nil {
		c.metrics.IncDroppedSend()
		c.log.Warnf("websocket send failed, err: %+v", err)
		return false
	}
	c.metrics.IncSent()
	return true
}

// Subscribe records topic as desired and asks the server for its notifications.
// The intent is kept even when the action cannot be sent.
func (c *Client) Subscribe(topic string) bool {
	if topic == "" {
		return false
	}
	c.subs.Add(topic)
	return c.Send(protocol.Subscribe{Chat: topic})
}

// Unsubscribe forgets topic and asks the server to stop its notifications.
func (c *Client) Unsubscribe(topic string) bool {
	if topic == "" {
		return false
	}
	c.subs.Remove(topic)
	return c.Send(protocol.Unsubscribe{Chat: topic})
}

// ResubscribesOnReconnect reports whether the client replays desired topics
// by itself after every successful open.
func (c *Client) ResubscribesOnReconnect() bool {
	return c.cfg.Resubscribe
}

// Resubscribe sends a subscribe action for every desired topic and returns how many were sent.
func (c *Client) Resubscribe() int {
	sent := 0
	for _, topic := range c.subs.Desired(nil) {
		if c.Send(protocol.Subscribe{Chat: topic}) {
			sent++
		}
	}
	return sent
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the identity of the current or pending connection.
func (c *Client) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// IsConnected reports whether the transport is open.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Attempts returns the reconnect attempts since the last successful open.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Session returns the id of the latest connection attempt.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Topics returns the desired topics, sorted.
func (c *Client) Topics() []string {
	return c.subs.Desired(nil)
}

// SubscriptionActive reports whether the server confirmed topic on the current connection.
func (c *Client) SubscriptionActive(topic string) bool {
	return c.subs.IsActive(topic)
}

// Metrics returns the metrics sink of the client.
func (c *Client) Metrics() *obs.Metrics {
	return c.metrics
}

// Typing returns the local typing debouncer. Its signals are sent as control actions.
func (c *Client) Typing() *typing.Sender {
	return c.typing
}

// NewTypingTracker returns a tracker fed by the typing notifications of this client.
// The tracker ignores the client's own identity and is cleared on disconnect.
// Calling the returned Registration detaches it.
func (c *Client) NewTypingTracker() (*typing.Tracker, bus.Registration) {
	tracker := typing.NewTracker(c.sched, c.cfg.TypingExpiry, c.Identity)
	offTyping := c.OnTyping(tracker.Observe)
	offDisconnect := c.OnDisconnect(tracker.Clear)
	return tracker, func() {
		offTyping()
		offDisconnect()
	}
}
