package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"livechat/pkg/exception"

	gws "github.com/gorilla/websocket"
)

const (
	DefaultDialerTimeout  = 10 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultReadLimit      = 512 << 10
	DefaultWriteQueueSize = 256
)

// Option configures the gorilla backed Dialer.
type Option struct {
	Header           http.Header
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadLimit        int64
	PingInterval     time.Duration
	WriteQueueSize   int
	WriteOverflow    OverflowPolicy
}

func (opt Option) withDefaults() Option {
	if opt.HandshakeTimeout <= 0 {
		opt.HandshakeTimeout = DefaultDialerTimeout
	}
	if opt.WriteTimeout <= 0 {
		opt.WriteTimeout = DefaultWriteTimeout
	}
	if opt.ReadLimit <= 0 {
		opt.ReadLimit = DefaultReadLimit
	}
	if opt.WriteQueueSize <= 0 {
		opt.WriteQueueSize = DefaultWriteQueueSize
	}
	return opt
}

type dialer struct {
	opt Option
	ws  *gws.Dialer
}

// NewDialer creates a Dialer that opens connections with gorilla/websocket.
func NewDialer(opt Option) Dialer {
	opt = opt.withDefaults()
	return &dialer{
		opt: opt,
		ws: &gws.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opt.HandshakeTimeout,
		},
	}
}

func (d *dialer) Open(ctx context.Context, endpoint string, listener Listener) Transport {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &transport{
		opt:      d.opt,
		writer:   NewWriter(d.opt.WriteQueueSize, d.opt.WriteOverflow),
		listener: listener,
		cancel:   cancel,
	}
	go t.run(ctx, d.ws, endpoint)
	return t
}

type transport struct {
	opt      Option
	writer   *Writer
	listener Listener
	cancel   context.CancelFunc
	once     sync.Once

	mu        sync.Mutex
	conn      *gws.Conn
	closing   bool
	closeCode CloseCode
}

func (t *transport) Send(msgType MessageType, payload []byte) error {
	if msgType != MessageText && msgType != MessageBinary {
		return exception.ErrWebSocketProtocol
	}
	return t.writer.Send(msgType, payload)
}

func (t *transport) Close(code CloseCode, reason string) error {
	var err error
	t.once.Do(func() {
		t.mu.Lock()
		t.closing = true
		t.closeCode = code
		conn := t.conn
		t.mu.Unlock()

		t.writer.SetConnected(false)
		t.writer.Drain()
		if conn != nil {
			deadline := time.Now().Add(t.opt.WriteTimeout)
			_ = conn.WriteControl(gws.CloseMessage, gws.FormatCloseMessage(int(code), reason), deadline)
			err = conn.Close()
		}
		t.cancel()
	})
	return err
}

func (t *transport) closeRequested() (CloseCode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCode, t.closing
}

func (t *transport) run(ctx context.Context, d *gws.Dialer, endpoint string) {
	conn, _, err := d.DialContext(ctx, endpoint, t.opt.Header)
	if err != nil {
		if code, ok := t.closeRequested(); ok {
			t.listener.OnClose(code, nil)
			return
		}
		t.listener.OnError(err)
		t.listener.OnClose(CloseAbnormal, err)
		return
	}

	t.mu.Lock()
	if t.closing {
		code := t.closeCode
		t.mu.Unlock()
		_ = conn.Close()
		t.listener.OnClose(code, nil)
		return
	}
	t.conn = conn
	t.mu.Unlock()

	conn.SetReadLimit(t.opt.ReadLimit)
	t.writer.SetConnected(true)
	t.listener.OnOpen()

	go t.writeLoop(ctx, conn)
	if t.opt.PingInterval > 0 {
		go t.pingLoop(ctx, conn)
	}
	t.readLoop(conn)
}

func (t *transport) readLoop(conn *gws.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.writer.SetConnected(false)
			t.cancel()
			_ = conn.Close()

			if code, ok := t.closeRequested(); ok {
				t.listener.OnClose(code, nil)
				return
			}
			var closeErr *gws.CloseError
			if errors.As(err, &closeErr) && (closeErr.Code == gws.CloseNormalClosure || closeErr.Code == gws.CloseGoingAway) {
				t.listener.OnClose(CloseCode(closeErr.Code), nil)
				return
			}
			t.listener.OnError(err)
			t.listener.OnClose(closeCodeOf(err), err)
			return
		}

		switch msgType {
		case gws.TextMessage:
			t.listener.OnFrame(MessageText, data)
		case gws.BinaryMessage:
			t.listener.OnFrame(MessageBinary, data)
		}
	}
}

func (t *transport) writeLoop(ctx context.Context, conn *gws.Conn) {
	for {
		frame, ok := t.writer.Next(ctx)
		if !ok {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(t.opt.WriteTimeout))
		if err := conn.WriteMessage(int(frame.MsgType), frame.Buf); err != nil {
			_ = conn.Close()
			return
		}
	}
}

// pingLoop uses WriteControl, which gorilla allows concurrently with writeLoop.
func (t *transport) pingLoop(ctx context.Context, conn *gws.Conn) {
	ticker := time.NewTicker(t.opt.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(gws.PingMessage, nil, time.Now().Add(t.opt.WriteTimeout)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func closeCodeOf(err error) CloseCode {
	var closeErr *gws.CloseError
	if errors.As(err, &closeErr) {
		return CloseCode(closeErr.Code)
	}
	return CloseAbnormal
}
