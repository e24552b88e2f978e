// README: Observable last-value cell; the propagation substrate between managers.
package observe

import "sync"

// Value holds a single published value. Setting it always stores the new
// value; subscribers are notified synchronously, but only when the value
// actually changed according to the equality function supplied at
// construction. New subscribers immediately receive the current value.
//
// The manager that owns a Value is the only writer; everyone else reads
// or subscribes. The subscription graph between managers must stay
// acyclic — a subscriber calling Set on the Value it subscribes to will
// re-enter its own callback.
type Value[T any] struct {
	mu      sync.Mutex
	eq      func(a, b T) bool
	current T
	subs    map[int]func(T)
	nextID  int
}

// NewValue creates a Value seeded with initial. eq gates subscriber
// notification; a nil eq disables the gate and every Set notifies.
func NewValue[T any](initial T, eq func(a, b T) bool) *Value[T] {
	return &Value[T]{
		eq:      eq,
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set publishes next. The value is stored unconditionally; when eq deems
// it unchanged, subscribers are not notified and later Gets and replays
// still see the stored value. Subscribers run synchronously on the
// caller's goroutine, outside the internal lock, in unspecified order.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	if v.eq != nil && v.eq(v.current, next) {
		v.current = next
		v.mu.Unlock()
		return
	}
	v.current = next
	fns := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers fn and replays the current value to it before
// returning. The returned func removes the subscription; calling it more
// than once is harmless.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	current := v.current
	v.mu.Unlock()

	fn(current)

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}
