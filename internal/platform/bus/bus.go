// Package bus is a small in-process publish/subscribe primitive. Each Topic
// carries a single payload type so subscribers cannot disagree with
// publishers about the shape of an event.
package bus

import "sync"

type Topic[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(T)
	order  []int
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{subs: map[int]func(T){}}
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.order = append(t.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			for i, existing := range t.order {
				if existing == id {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers payload synchronously to every subscriber in
// subscription order. Handlers may subscribe or unsubscribe while running.
func (t *Topic[T]) Publish(payload T) {
	t.mu.RLock()
	handlers := make([]func(T), 0, len(t.order))
	for _, id := range t.order {
		handlers = append(handlers, t.subs[id])
	}
	t.mu.RUnlock()

	for _, fn := range handlers {
		fn(payload)
	}
}

// Len reports the number of live subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
