package observable

import "sync"

// Value is a last-value cache: it always holds the most recently set value
// and fans it out to any number of watchers. Watchers receive the current
// value on subscription, then every subsequent replacement.
type Value[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers map[int]chan T
	nextID   int
}

func NewValue[T any]() *Value[T] {
	return &Value[T]{watchers: make(map[int]chan T)}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the held value wholesale and notifies watchers. Slow watchers
// drop intermediate values, never block the writer.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	for _, ch := range v.watchers {
		select {
		case ch <- value:
		default:
			// drain the stale value, then retry once
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- value:
			default:
			}
		}
	}
	v.mu.Unlock()
}

// Reset restores the zero value without notifying watchers.
func (v *Value[T]) Reset() {
	var zero T
	v.mu.Lock()
	v.value = zero
	v.mu.Unlock()
}

// Watch returns a channel delivering value replacements and a cancel func
// that must be called to release the watcher. The channel is buffered with
// the latest value so a new watcher observes the current state immediately.
func (v *Value[T]) Watch() (<-chan T, func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	ch := make(chan T, 1)
	ch <- v.value
	v.watchers[id] = ch
	v.mu.Unlock()

	cancel := func() {
		v.mu.Lock()
		if _, ok := v.watchers[id]; ok {
			delete(v.watchers, id)
			close(ch)
		}
		v.mu.Unlock()
	}

	return ch, cancel
}
