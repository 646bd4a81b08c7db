package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Serial runs tasks one at a time in submission order.
//
// Do runs the task on the calling goroutine when nothing else is running.
// A task submitted while another is running, including from inside a task,
// is queued and run by the goroutine already draining the queue, so Do
// never blocks on other tasks and never deadlocks on reentry.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// Do submits fn for execution.
func (s *Serial) Do(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.run(next)
		s.mu.Lock()
	}
	s.queue = nil
	s.running = false
	s.mu.Unlock()
}

func (s *Serial) run(fn func()) {
	defer func() {
		// a panicking task must not leave the executor marked running
		if r := recover(); r != nil {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	fn()
}

// Scheduler wraps inner so that fired callbacks run through s.
// A timer stopped after firing but before its task runs is still cancelled.
func (s *Serial) Scheduler(inner Scheduler) Scheduler {
	return serialScheduler{serial: s, inner: inner}
}

type serialScheduler struct {
	serial *Serial
	inner  Scheduler
}

const (
	timerPending int32 = iota
	timerStopped
	timerFired
)

type serialTimer struct {
	inner Timer
	state atomic.Int32
}

func (s serialScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &serialTimer{}
	t.inner = s.inner.AfterFunc(d, func() {
		s.serial.Do(func() {
			if !t.state.CompareAndSwap(timerPending, timerFired) {
				return
			}
			fn()
		})
	})
	return t
}

func (t *serialTimer) Stop() bool {
	stopped := t.state.CompareAndSwap(timerPending, timerStopped)
	if t.inner != nil {
		t.inner.Stop()
	}
	return stopped
}
