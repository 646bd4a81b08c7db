package typing

import (
	"sync"
	"time"

	"livechat/pkg/schedule"
)

// DefaultIdle is how long the local user may pause before a stop is emitted.
const DefaultIdle = 2 * time.Second

// Emitter publishes a local typing transition for topic.
type Emitter func(topic string, active bool)

type pending struct {
	timer schedule.Timer
	gen   uint64
}

// Sender debounces local keystrokes into start and stop signals.
// A start is emitted on the first keystroke after idle; later keystrokes
// only re-arm the idle window. A stop is emitted once, on Stop or when
// the window elapses.
type Sender struct {
	sched schedule.Scheduler
	idle  time.Duration
	emit  Emitter

	mu     sync.Mutex
	gen    uint64
	active map[string]pending
}

// NewSender creates a Sender. A non-positive idle uses DefaultIdle.
func NewSender(sched schedule.Scheduler, idle time.Duration, emit Emitter) *Sender {
	if idle <= 0 {
		idle = DefaultIdle
	}
	if emit == nil {
		emit = func(string, bool) {}
	}
	return &Sender{
		sched:  sched,
		idle:   idle,
		emit:   emit,
		active: make(map[string]pending),
	}
}

// Keystroke records local input in topic.
func (s *Sender) Keystroke(topic string) {
	if topic == "" {
		return
	}

	s.mu.Lock()
	prev, wasActive := s.active[topic]
	if wasActive {
		prev.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.active[topic] = pending{
		timer: s.sched.AfterFunc(s.idle, func() { s.expire(topic, gen) }),
		gen:   gen,
	}
	s.mu.Unlock()

	if !wasActive {
		s.emit(topic, true)
	}
}

// Stop ends typing in topic, e.g. when the input was sent or cleared.
func (s *Sender) Stop(topic string) {
	s.mu.Lock()
	p, ok := s.active[topic]
	if ok {
		p.timer.Stop()
		delete(s.active, topic)
	}
	s.mu.Unlock()

	if ok {
		s.emit(topic, false)
	}
}

func (s *Sender) expire(topic string, gen uint64) {
	s.mu.Lock()
	p, ok := s.active[topic]
	if !ok || p.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.active, topic)
	s.mu.Unlock()

	s.emit(topic, false)
}

// Reset cancels every pending window without emitting.
func (s *Sender) Reset() {
	s.mu.Lock()
	for topic, p := range s.active {
		p.timer.Stop()
		delete(s.active, topic)
	}
	s.mu.Unlock()
}

// Active reports whether a start was emitted for topic without a matching stop.
func (s *Sender) Active(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[topic]
	return ok
}
