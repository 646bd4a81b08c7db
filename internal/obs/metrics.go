package obs

import (
	"sync/atomic"
	"time"

	"livechat/internal/protocol"
)

const maxKind = int(protocol.KindSubscriptionConfirmed)

// Metrics collects lightweight counters and latency stats for one client.
type Metrics struct {
	notifications     [maxKind + 1]uint64
	decodeFailures    uint64
	unrecognized      uint64
	droppedSends      uint64
	sent              uint64
	reconnectAttempts uint64
	exhausted         uint64
	handlerPanics     uint64
	transportErrors   uint64

	connectLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Notifications     map[protocol.Kind]uint64
	DecodeFailures    uint64
	Unrecognized      uint64
	DroppedSends      uint64
	Sent              uint64
	ReconnectAttempts uint64
	Exhausted         uint64
	HandlerPanics     uint64
	TransportErrors   uint64
	ConnectLatency    LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveNotification counts a decoded inbound notification.
func (m *Metrics) ObserveNotification(kind protocol.Kind) {
	if m == nil {
		return
	}
	idx := int(kind)
	if idx >= 0 && idx < len(m.notifications) {
		atomic.AddUint64(&m.notifications[idx], 1)
	}
}

// IncDecodeFailure records a frame that could not be decoded.
func (m *Metrics) IncDecodeFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decodeFailures, 1)
}

// IncUnrecognized records a frame with an unknown type tag.
func (m *Metrics) IncUnrecognized() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unrecognized, 1)
}

// IncDroppedSend records a control action dropped while not connected.
func (m *Metrics) IncDroppedSend() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.droppedSends, 1)
}

// IncSent records a control action handed to the transport.
func (m *Metrics) IncSent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sent, 1)
}

// IncReconnectAttempt records a scheduled reconnect.
func (m *Metrics) IncReconnectAttempt() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.reconnectAttempts, 1)
}

// IncExhausted records the reconnect ceiling being hit.
func (m *Metrics) IncExhausted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.exhausted, 1)
}

// IncHandlerPanic records a recovered handler panic.
func (m *Metrics) IncHandlerPanic() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.handlerPanics, 1)
}

// IncTransportError records a transport failure.
func (m *Metrics) IncTransportError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.transportErrors, 1)
}

// ObserveConnect measures the time from dial to open.
func (m *Metrics) ObserveConnect(d time.Duration) {
	if m == nil {
		return
	}
	m.connectLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	counts := make(map[protocol.Kind]uint64)
	for i := range m.notifications {
		if v := atomic.LoadUint64(&m.notifications[i]); v > 0 {
			counts[protocol.Kind(i)] = v
		}
	}
	return Snapshot{
		Notifications:     counts,
		DecodeFailures:    atomic.LoadUint64(&m.decodeFailures),
		Unrecognized:      atomic.LoadUint64(&m.unrecognized),
		DroppedSends:      atomic.LoadUint64(&m.droppedSends),
		Sent:              atomic.LoadUint64(&m.sent),
		ReconnectAttempts: atomic.LoadUint64(&m.reconnectAttempts),
		Exhausted:         atomic.LoadUint64(&m.exhausted),
		HandlerPanics:     atomic.LoadUint64(&m.handlerPanics),
		TransportErrors:   atomic.LoadUint64(&m.transportErrors),
		ConnectLatency:    m.connectLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}

	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(atomic.LoadUint64(&l.sum) / count),
	}
}
