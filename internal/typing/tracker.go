package typing

import (
	"sort"
	"sync"
	"time"

	"livechat/internal/bus"
	"livechat/internal/protocol"
	"livechat/pkg/schedule"
)

// DefaultExpiry is how long a remote start stays valid without a refresh.
const DefaultExpiry = 3 * time.Second

// Change is the typing set of a conversation after a transition.
type Change struct {
	Topic string
	Names []string
}

type changeKey struct{}

type actor struct {
	name  string
	timer schedule.Timer
	gen   uint64
}

// Tracker keeps the set of remote participants typing in the open conversation.
type Tracker struct {
	sched    schedule.Scheduler
	expiry   time.Duration
	identity func() string
	changes  *bus.Bus[changeKey, Change]

	mu     sync.Mutex
	gen    uint64
	topic  string
	actors map[string]*actor
}

// NewTracker creates a Tracker. identity returns the local user, whose signals are ignored.
// A non-positive expiry uses DefaultExpiry.
func NewTracker(sched schedule.Scheduler, expiry time.Duration, identity func() string) *Tracker {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if identity == nil {
		identity = func() string { return "" }
	}
	return &Tracker{
		sched:    sched,
		expiry:   expiry,
		identity: identity,
		changes:  bus.New[changeKey, Change](),
		actors:   make(map[string]*actor),
	}
}

// OnChange registers fn to receive the typing set after every transition.
func (t *Tracker) OnChange(fn func(topic string, names []string)) bus.Registration {
	if fn == nil {
		return func() {}
	}
	return t.changes.Register(changeKey{}, func(c Change) { fn(c.Topic, c.Names) })
}

// Open switches the tracked conversation. Entries of the previous one are dropped.
func (t *Tracker) Open(topic string) {
	t.mu.Lock()
	if t.topic == topic {
		t.mu.Unlock()
		return
	}
	prev := t.topic
	dropped := t.clearLocked()
	t.topic = topic
	t.mu.Unlock()

	if dropped {
		t.changes.Dispatch(changeKey{}, Change{Topic: prev})
	}
}

// Close stops tracking any conversation.
func (t *Tracker) Close() {
	t.Open("")
}

// Clear drops every entry but keeps the conversation open.
func (t *Tracker) Clear() {
	t.mu.Lock()
	topic := t.topic
	dropped := t.clearLocked()
	t.mu.Unlock()

	if dropped {
		t.changes.Dispatch(changeKey{}, Change{Topic: topic})
	}
}

func (t *Tracker) clearLocked() bool {
	if len(t.actors) == 0 {
		return false
	}
	for id, a := range t.actors {
		a.timer.Stop()
		delete(t.actors, id)
	}
	return true
}

// Topic returns the tracked conversation.
func (t *Tracker) Topic() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.topic
}

// Observe applies a remote typing notification.
func (t *Tracker) Observe(n protocol.UserTyping) {
	if n.UserID == "" || n.UserID == t.identity() {
		return
	}

	t.mu.Lock()
	if t.topic == "" || n.ChatID != t.topic {
		t.mu.Unlock()
		return
	}

	var changed bool
	if n.IsTyping {
		changed = t.refreshLocked(n.UserID, displayName(n))
	} else {
		changed = t.removeLocked(n.UserID)
	}
	c := t.changeLocked()
	t.mu.Unlock()

	if changed {
		t.changes.Dispatch(changeKey{}, c)
	}
}

func (t *Tracker) refreshLocked(userID, name string) bool {
	t.gen++
	gen := t.gen
	timer := t.sched.AfterFunc(t.expiry, func() { t.expire(userID, gen) })

	a, ok := t.actors[userID]
	if !ok {
		t.actors[userID] = &actor{name: name, timer: timer, gen: gen}
		return true
	}
	a.timer.Stop()
	a.timer = timer
	a.gen = gen
	if a.name == name {
		return false
	}
	a.name = name
	return true
}

func (t *Tracker) removeLocked(userID string) bool {
	a, ok := t.actors[userID]
	if !ok {
		return false
	}
	a.timer.Stop()
	delete(t.actors, userID)
	return true
}

func (t *Tracker) expire(userID string, gen uint64) {
	t.mu.Lock()
	a, ok := t.actors[userID]
	if !ok || a.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.actors, userID)
	c := t.changeLocked()
	t.mu.Unlock()

	t.changes.Dispatch(changeKey{}, c)
}

func (t *Tracker) changeLocked() Change {
	return Change{Topic: t.topic, Names: t.namesLocked()}
}

func (t *Tracker) namesLocked() []string {
	if len(t.actors) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.actors))
	for _, a := range t.actors {
		names = append(names, a.name)
	}
	sort.Strings(names)
	return names
}

// Active returns the display names typing in the open conversation, sorted.
func (t *Tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.namesLocked()
}

func displayName(n protocol.UserTyping) string {
	if n.Username != "" {
		return n.Username
	}
	return n.UserID
}
