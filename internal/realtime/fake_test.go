package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"livechat/internal/obs"
	"livechat/internal/protocol"
	"livechat/pkg/schedule"
	"livechat/pkg/websocket"

	"github.com/stretchr/testify/require"
)

var errDropped = errors.New("connection reset by peer")

type fakeTransport struct {
	mu       sync.Mutex
	endpoint string
	listener websocket.Listener
	sent     []string
	closed   bool
	code     websocket.CloseCode
	sendErr  error
}

func (t *fakeTransport) Send(_ websocket.MessageType, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, string(payload))
	return nil
}

func (t *fakeTransport) Close(code websocket.CloseCode, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		t.code = code
	}
	return nil
}

func (t *fakeTransport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

func (t *fakeTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) open() { t.listener.OnOpen() }
func (t *fakeTransport) frame(raw string) { t.listener.OnFrame(websocket.MessageText, []byte(raw)) }
func (t *fakeTransport) drop() { t.listener.OnClose(websocket.CloseAbnormal, nil) }
func (t *fakeTransport) closeClean() { t.listener.OnClose(websocket.CloseNormal, nil) }
func (t *fakeTransport) fail(err error) {
	t.listener.OnError(err)
	t.listener.OnClose(websocket.CloseAbnormal, err)
}

type fakeDialer struct {
	mu         sync.Mutex
	transports []*fakeTransport
}

func (d *fakeDialer) Open(_ context.Context, endpoint string, l websocket.Listener) websocket.Transport {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &fakeTransport{endpoint: endpoint, listener: l}
	d.transports = append(d.transports, t)
	return t
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.transports)
}

func (d *fakeDialer) Last(t *testing.T) *fakeTransport {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.transports, "no transport dialed")
	return d.transports[len(d.transports)-1]
}

type harness struct {
	client  *Client
	dialer  *fakeDialer
	clock   *schedule.Manual
	metrics *obs.Metrics
	errs    []protocol.ErrorNotification
	events  []string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		dialer:  &fakeDialer{},
		clock:   schedule.NewManual(),
		metrics: obs.NewMetrics(),
	}
	base := []Option{
		WithDialer(h.dialer),
		WithScheduler(h.clock),
		WithMetrics(h.metrics),
		WithLogger(obs.Discard()),
	}
	h.client = New(append(base, opts...)...)
	h.client.OnError(func(n protocol.ErrorNotification) {
		h.errs = append(h.errs, n)
		h.events = append(h.events, "error:"+n.Message)
	})
	h.client.OnConnect(func() { h.events = append(h.events, "connect") })
	h.client.OnDisconnect(func() { h.events = append(h.events, "disconnect") })
	return h
}

// connected returns a harness whose client is open as u1.
func connected(t *testing.T, opts ...Option) (*harness, *fakeTransport) {
	t.Helper()
	h := newHarness(t, opts...)
	h.client.Connect("u1")
	tr := h.dialer.Last(t)
	tr.open()
	require.True(t, h.client.IsConnected())
	h.events = nil
	return h, tr
}
