// Package notify implements the payload-free change notification used by the stores.
// Subscribers re-query the store they listen to; the bus only says "something changed".
package notify

import "sync"

// Listener is invoked after every committed mutation.
type Listener func()

type registration struct {
	id uint64
	fn Listener
}

// Bus keeps listeners in registration order.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []registration
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function removing exactly this registration.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, registration{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Notify calls every listener registered when Notify started, synchronously and in order.
// Listeners added or removed while dispatching take effect on the next call.
func (b *Bus) Notify() {
	b.mu.Lock()
	snapshot := make([]Listener, len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.fn
	}
	b.mu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
}

// Len returns the number of active registrations.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
