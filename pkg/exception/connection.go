package exception

import "errors"

var (
	ErrNotConnected       = errors.New("connection: not connected")
	ErrReconnectExhausted = errors.New("connection: reconnect attempts exhausted")
	ErrTransport          = errors.New("connection: transport failure")
	ErrInvalidArgument    = errors.New("invalid argument")
)
