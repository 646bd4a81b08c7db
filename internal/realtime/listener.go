package realtime

import "livechat/pkg/websocket"

// listener binds transport callbacks to the connection generation that opened it.
// Callbacks of a superseded transport are dropped by the client.
type listener struct {
	c   *Client
	gen uint64
}

func (l *listener) OnOpen() {
	l.c.serial.Do(func() { l.c.handleOpen(l.gen) })
}

func (l *listener) OnFrame(_ websocket.MessageType, payload []byte) {
	l.c.serial.Do(func() { l.c.handleFrame(l.gen, payload) })
}

func (l *listener) OnError(err error) {
	l.c.serial.Do(func() { l.c.handleError(l.gen, err) })
}

func (l *listener) OnClose(code websocket.CloseCode, err error) {
	l.c.serial.Do(func() { l.c.handleClose(l.gen, code, err) })
}
