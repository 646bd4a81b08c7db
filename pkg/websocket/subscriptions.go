package websocket

import (
	"sort"
	"sync"
)

// Subscriptions tracks desired and active topics for one client.
// Desired is the caller's intent; active is what the server has confirmed
// on the current connection.
type Subscriptions struct {
	mu      sync.Mutex
	desired map[string]struct{}
	active  map[string]struct{}
}

// NewSubscriptions creates a subscription tracker.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		desired: make(map[string]struct{}),
		active:  make(map[string]struct{}),
	}
}

// Add registers a desired topic.
// Returns true if the topic was newly added.
func (s *Subscriptions) Add(topic string) bool {
	s.mu.Lock()
	_, exists := s.desired[topic]
	if !exists {
		s.desired[topic] = struct{}{}
	}
	s.mu.Unlock()
	return !exists
}

// Remove deletes a desired topic and its active mark.
// Returns true if the topic was desired.
func (s *Subscriptions) Remove(topic string) bool {
	s.mu.Lock()
	_, ok := s.desired[topic]
	if ok {
		delete(s.desired, topic)
	}
	delete(s.active, topic)
	s.mu.Unlock()
	return ok
}

// Has reports whether topic is desired.
func (s *Subscriptions) Has(topic string) bool {
	s.mu.Lock()
	_, ok := s.desired[topic]
	s.mu.Unlock()
	return ok
}

// MarkActive marks a desired topic as confirmed. Unknown topics are ignored.
func (s *Subscriptions) MarkActive(topic string) {
	s.mu.Lock()
	if _, ok := s.desired[topic]; ok {
		s.active[topic] = struct{}{}
	}
	s.mu.Unlock()
}

// IsActive reports whether topic is confirmed on the current connection.
func (s *Subscriptions) IsActive(topic string) bool {
	s.mu.Lock()
	_, ok := s.active[topic]
	s.mu.Unlock()
	return ok
}

// ClearActive clears all active topics.
func (s *Subscriptions) ClearActive() {
	s.mu.Lock()
	clear(s.active)
	s.mu.Unlock()
}

// Desired fills dst with desired topics in sorted order and returns it.
func (s *Subscriptions) Desired(dst []string) []string {
	s.mu.Lock()
	if dst == nil {
		dst = make([]string, 0, len(s.desired))
	} else {
		dst = dst[:0]
	}
	for topic := range s.desired {
		dst = append(dst, topic)
	}
	s.mu.Unlock()
	sort.Strings(dst)
	return dst
}

// Count returns the number of desired topics.
func (s *Subscriptions) Count() int {
	s.mu.Lock()
	count := len(s.desired)
	s.mu.Unlock()
	return count
}
