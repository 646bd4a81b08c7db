package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by virtual time. Callbacks only run inside Advance,
// on the goroutine that calls it, in deadline order.
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
	seq     uint64
	timers  []*manualTimer
}

type manualTimer struct {
	m    *Manual
	at   time.Duration
	seq  uint64
	fn   func()
	done bool
}

// NewManual creates a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.elapsed + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d and runs every callback that comes due,
// including callbacks scheduled by other callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.elapsed + d
	for {
		next := m.popDue(target)
		if next == nil {
			break
		}
		m.elapsed = next.at
		m.mu.Unlock()
		next.fn()
		m.mu.Lock()
	}
	m.elapsed = target
	m.mu.Unlock()
}

// Elapsed returns the virtual time since creation.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

// Pending returns the number of callbacks waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Delays returns the remaining delay of each pending callback, earliest first.
func (m *Manual) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortLocked()
	delays := make([]time.Duration, 0, len(m.timers))
	for _, t := range m.timers {
		delays = append(delays, t.at-m.elapsed)
	}
	return delays
}

func (m *Manual) popDue(target time.Duration) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	m.sortLocked()
	first := m.timers[0]
	if first.at > target {
		return nil
	}
	m.timers = m.timers[1:]
	first.done = true
	return first
}

func (m *Manual) sortLocked() {
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, pending := range t.m.timers {
		if pending == t {
			t.m.timers = append(t.m.timers[:i], t.m.timers[i+1:]...)
			break
		}
	}
	return true
}
