package obs

import (
	"context"
	"strconv"
	"time"

	"livechat/internal/protocol"
)

// Reporter periodically logs a metrics line with the deltas since the last report.
type Reporter struct {
	m   *Metrics
	log Logger

	buf        [512]byte
	prev, curr Snapshot
	prevAt     time.Time
	currAt     time.Time
}

// NewReporter creates a reporter over m.
func NewReporter(m *Metrics, log Logger) *Reporter {
	if log == nil {
		log = Discard()
	}
	return &Reporter{m: m, log: log}
}

// RunReportSchedule logs a line every interval until ctx is done.
func (r *Reporter) RunReportSchedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Capture(time.Now())
			r.log.Infof("%s", r.Line())
		}
	}
}

// Capture takes a new snapshot at now.
func (r *Reporter) Capture(now time.Time) {
	r.prev = r.curr
	r.prevAt = r.currAt
	r.curr = r.m.Snapshot()
	r.currAt = now
	if r.prevAt.IsZero() {
		r.prevAt = now
	}
}

// Line formats the last capture.
func (r *Reporter) Line() string {
	line := r.buf[:0]

	line = append(line, "[RECV] "...)
	var recv, recvPrev uint64
	for _, k := range protocol.Kinds() {
		recv += r.curr.Notifications[k]
		recvPrev += r.prev.Notifications[k]
	}
	line = appendCounter(line, "total", recv, recvPrev)
	line = appendCounter(line, "decode_err", r.curr.DecodeFailures, r.prev.DecodeFailures)
	line = appendCounter(line, "unknown", r.curr.Unrecognized, r.prev.Unrecognized)

	line = append(line, " [SEND] "...)
	line = appendCounter(line, "sent", r.curr.Sent, r.prev.Sent)
	line = appendCounter(line, "dropped", r.curr.DroppedSends, r.prev.DroppedSends)

	line = append(line, " [CONN] "...)
	line = appendCounter(line, "reconnect", r.curr.ReconnectAttempts, r.prev.ReconnectAttempts)
	line = appendCounter(line, "exhausted", r.curr.Exhausted, r.prev.Exhausted)
	line = appendCounter(line, "transport_err", r.curr.TransportErrors, r.prev.TransportErrors)
	line = appendCounter(line, "panic", r.curr.HandlerPanics, r.prev.HandlerPanics)
	if lat := r.curr.ConnectLatency; lat.Count > 0 {
		line = append(line, "connect_avg="...)
		line = strconv.AppendInt(line, lat.Avg.Milliseconds(), 10)
		line = append(line, "ms "...)
	}

	line = append(line, "[SPAN] "...)
	line = strconv.AppendInt(line, r.currAt.Sub(r.prevAt).Milliseconds(), 10)
	line = append(line, "ms"...)
	return string(line)
}

func appendCounter(line []byte, name string, curr, prev uint64) []byte {
	line = append(line, name...)
	line = append(line, '=')
	line = strconv.AppendUint(line, curr, 10)
	if curr > prev {
		line = append(line, "(+"...)
		line = strconv.AppendUint(line, curr-prev, 10)
		line = append(line, ')')
	}
	return append(line, ' ')
}
