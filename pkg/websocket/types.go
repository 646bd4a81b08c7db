package websocket

import "time"

// MessageType represents a WebSocket message type.
// Values match RFC 6455 opcodes where applicable.
type MessageType uint8

const (
	// MessageText is a text data frame.
	MessageText MessageType = 1
	// MessageBinary is a binary data frame.
	MessageBinary MessageType = 2
	// MessageClose is a close control frame.
	MessageClose MessageType = 8
	// MessagePing is a ping control frame.
	MessagePing MessageType = 9
	// MessagePong is a pong control frame.
	MessagePong MessageType = 10
)

// CloseCode is a WebSocket close code.
type CloseCode uint16

const (
	// CloseNormal indicates a normal closure.
	CloseNormal CloseCode = 1000
	// CloseGoingAway indicates the peer is going away.
	CloseGoingAway CloseCode = 1001
	// CloseNoStatus is reported when the close frame carried no code.
	CloseNoStatus CloseCode = 1005
	// CloseAbnormal is reported when the connection dropped without a close frame.
	CloseAbnormal CloseCode = 1006
	// ClosePolicyViolation is sent by the chat server when userId is missing.
	ClosePolicyViolation CloseCode = 1008
)

// OverflowPolicy defines queue behavior when full.
type OverflowPolicy uint8

const (
	// OverflowDropNewest drops the incoming item if the queue is full.
	OverflowDropNewest OverflowPolicy = iota
	// OverflowDropOldest drops the oldest item to make room.
	OverflowDropOldest
	// OverflowBlock blocks until space is available.
	OverflowBlock
)

// Backoff defines reconnect backoff behavior.
type Backoff struct {
	// Min is the delay unit multiplied by Factor for each attempt.
	Min time.Duration
	// Max caps the delay regardless of attempt count.
	Max time.Duration
	// Factor multiplies the delay for each retry attempt.
	Factor float64
	// Jitter adds randomization as a fraction of the delay (0-1).
	Jitter float64
}
