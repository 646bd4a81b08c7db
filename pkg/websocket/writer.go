package websocket

import (
	"context"
	"sync/atomic"

	"livechat/pkg/exception"
)

// OutboundFrame represents a queued write payload.
type OutboundFrame struct {
	// MsgType is the WebSocket message type for the payload.
	MsgType MessageType
	// Buf is the payload buffer to send.
	Buf []byte
}

// Writer provides a bounded outbound queue drained by a single write loop.
type Writer struct {
	queue     chan OutboundFrame
	policy    OverflowPolicy
	connected atomic.Bool
	dropped   atomic.Uint64
}

// NewWriter creates a Writer with a bounded queue.
func NewWriter(capacity int, policy OverflowPolicy) *Writer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Writer{
		queue:  make(chan OutboundFrame, capacity),
		policy: policy,
	}
}

// SetConnected toggles the writer connection state.
func (w *Writer) SetConnected(connected bool) {
	w.connected.Store(connected)
}

// Dropped returns the number of frames discarded by the overflow policy.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// Send copies payload and queues it according to the overflow policy.
func (w *Writer) Send(msgType MessageType, payload []byte) error {
	if !w.connected.Load() {
		return exception.ErrNotConnected
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	frame := OutboundFrame{MsgType: msgType, Buf: buf}

	switch w.policy {
	case OverflowBlock:
		w.queue <- frame
		return nil
	case OverflowDropOldest:
		for {
			select {
			case w.queue <- frame:
				return nil
			default:
				select {
				case <-w.queue:
					w.dropped.Add(1)
				default:
				}
			}
		}
	default:
		select {
		case w.queue <- frame:
			return nil
		default:
			w.dropped.Add(1)
			return exception.ErrWebSocketQueueFull
		}
	}
}

// Next waits for the next outbound frame or context cancellation.
func (w *Writer) Next(ctx context.Context) (OutboundFrame, bool) {
	select {
	case <-ctx.Done():
		return OutboundFrame{}, false
	case frame := <-w.queue:
		return frame, true
	}
}

// Drain clears the queue.
func (w *Writer) Drain() {
	for {
		select {
		case <-w.queue:
		default:
			return
		}
	}
}

// Len returns the number of queued frames.
func (w *Writer) Len() int {
	return len(w.queue)
}
