package websocket

import "context"

// Transport is a single connection returned by a Dialer.
// It may still be opening when returned.
type Transport interface {
	// Send queues a payload for writing. It fails when the transport is not open
	// or the outbound queue rejects the payload.
	Send(msgType MessageType, payload []byte) error
	// Close closes the connection. Calling it more than once is safe.
	Close(code CloseCode, reason string) error
}

// Listener receives the lifecycle of one Transport.
// Callbacks for a transport are delivered from one goroutine, in order:
// OnOpen, any number of OnFrame, then OnClose exactly once.
// OnError may precede OnClose when the connection failed.
type Listener interface {
	OnOpen()
	OnFrame(msgType MessageType, payload []byte)
	OnError(err error)
	OnClose(code CloseCode, err error)
}

// Dialer opens transports without blocking the caller.
// The outcome of the open is reported through the Listener.
type Dialer interface {
	Open(ctx context.Context, endpoint string, listener Listener) Transport
}
