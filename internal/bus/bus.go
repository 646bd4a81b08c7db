package bus

import (
	"runtime/debug"
	"sync"

	"github.com/yanun0323/logs"
)

// Registration removes a callback from the bus. Calling it more than once is a no-op.
type Registration func()

// PanicHook observes a recovered callback panic.
type PanicHook[K comparable] func(kind K, recovered any)

type entry[V any] struct {
	id uint64
	fn func(V)
}

// Bus fans a value out to the callbacks registered for its kind.
//
// Callbacks run synchronously on the dispatching goroutine, in registration
// order. Dispatch iterates a snapshot taken at entry: a callback removed
// mid-pass still completes the pass it was part of, and receives nothing after.
type Bus[K comparable, V any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[K][]entry[V]
	onPanic PanicHook[K]
}

// New allocates an empty bus.
func New[K comparable, V any]() *Bus[K, V] {
	return &Bus[K, V]{entries: make(map[K][]entry[V])}
}

// OnPanic installs a hook invoked after a callback panic is recovered.
func (b *Bus[K, V]) OnPanic(hook PanicHook[K]) {
	b.mu.Lock()
	b.onPanic = hook
	b.mu.Unlock()
}

// Register appends fn to the callbacks of kind.
func (b *Bus[K, V]) Register(kind K, fn func(V)) Registration {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	cur := b.entries[kind]
	next := make([]entry[V], len(cur), len(cur)+1)
	copy(next, cur)
	b.entries[kind] = append(next, entry[V]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(kind, id) })
	}
}

func (b *Bus[K, V]) remove(kind K, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.entries[kind]
	for i := range cur {
		if cur[i].id != id {
			continue
		}
		if len(cur) == 1 {
			delete(b.entries, kind)
			return
		}
		next := make([]entry[V], 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		b.entries[kind] = next
		return
	}
}

// Dispatch delivers v to every callback of kind and returns how many ran.
func (b *Bus[K, V]) Dispatch(kind K, v V) int {
	b.mu.Lock()
	snapshot := b.entries[kind]
	hook := b.onPanic
	b.mu.Unlock()

	for _, e := range snapshot {
		b.invoke(kind, e.fn, v, hook)
	}
	return len(snapshot)
}

func (b *Bus[K, V]) invoke(kind K, fn func(V), v V, hook PanicHook[K]) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("bus: callback panic, kind: %v, err: %v\n%s", kind, r, debug.Stack())
			if hook != nil {
				hook(kind, r)
			}
		}
	}()
	fn(v)
}

// Len returns the number of callbacks registered for kind.
func (b *Bus[K, V]) Len(kind K) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries[kind])
}
