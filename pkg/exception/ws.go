package exception

import "errors"

// WS errors
var (
	ErrWebSocketProtocol  = errors.New("websocket: protocol error")
	ErrWebSocketQueueFull = errors.New("websocket: outbound queue full")
	ErrWebSocketEndpoint  = errors.New("websocket: invalid endpoint")
)
