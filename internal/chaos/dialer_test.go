package chaos

import (
	"context"
	"errors"
	"testing"
	"time"

	"livechat/pkg/exception"
	"livechat/pkg/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	closed bool
	code   websocket.CloseCode
}

func (t *stubTransport) Send(websocket.MessageType, []byte) error { return nil }

func (t *stubTransport) Close(code websocket.CloseCode, _ string) error {
	t.closed, t.code = true, code
	return nil
}

type stubDialer struct {
	listener  websocket.Listener
	transport *stubTransport
}

func (d *stubDialer) Open(_ context.Context, _ string, l websocket.Listener) websocket.Transport {
	d.listener = l
	d.transport = &stubTransport{}
	return d.transport
}

type recorder struct {
	frames []string
	events chan string
}

func newRecorder() *recorder { return &recorder{events: make(chan string, 8)} }

func (r *recorder) OnOpen() { r.events <- "open" }

func (r *recorder) OnFrame(_ websocket.MessageType, payload []byte) {
	r.frames = append(r.frames, string(payload))
}

func (r *recorder) OnError(error) { r.events <- "error" }

func (r *recorder) OnClose(websocket.CloseCode, error) { r.events <- "close" }

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{DropRate: 0.1}.Enabled())

	for _, cfg := range []Config{{DropRate: -0.1}, {DuplicateRate: 1.5}, {FailDialRate: 2}} {
		assert.ErrorIs(t, cfg.Validate(), exception.ErrConfig)
	}

	_, err := NewDialer(nil, Config{})
	assert.ErrorIs(t, err, exception.ErrNilInstance)
}

func TestPassThrough(t *testing.T) {
	inner := &stubDialer{}
	d, err := NewDialer(inner, Config{Seed: 1})
	require.NoError(t, err)

	rec := newRecorder()
	tr := d.Open(context.Background(), "ws://chat", rec)
	assert.Same(t, inner.transport, tr)

	inner.listener.OnOpen()
	inner.listener.OnFrame(websocket.MessageText, []byte("a"))
	inner.listener.OnFrame(websocket.MessageText, []byte("b"))
	assert.Equal(t, []string{"a", "b"}, rec.frames)
	assert.Equal(t, "open", <-rec.events)
}

func TestDropCutsConnection(t *testing.T) {
	inner := &stubDialer{}
	d, err := NewDialer(inner, Config{Seed: 1, DropRate: 1})
	require.NoError(t, err)

	rec := newRecorder()
	d.Open(context.Background(), "ws://chat", rec)
	inner.listener.OnFrame(websocket.MessageText, []byte("a"))

	assert.Empty(t, rec.frames)
	assert.True(t, inner.transport.closed)
	assert.Equal(t, websocket.CloseGoingAway, inner.transport.code)
}

func TestDuplicate(t *testing.T) {
	inner := &stubDialer{}
	d, err := NewDialer(inner, Config{Seed: 1, DuplicateRate: 1})
	require.NoError(t, err)

	rec := newRecorder()
	d.Open(context.Background(), "ws://chat", rec)
	inner.listener.OnFrame(websocket.MessageText, []byte("a"))
	assert.Equal(t, []string{"a", "a"}, rec.frames)
}

func TestFailDial(t *testing.T) {
	inner := &stubDialer{}
	d, err := NewDialer(inner, Config{Seed: 1, FailDialRate: 1})
	require.NoError(t, err)

	rec := newRecorder()
	tr := d.Open(context.Background(), "ws://chat", rec)
	assert.Nil(t, inner.listener)
	assert.True(t, errors.Is(tr.Send(websocket.MessageText, nil), exception.ErrNotConnected))

	for _, want := range []string{"error", "close"} {
		select {
		case got := <-rec.events:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}
}
