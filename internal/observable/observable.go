// Package observable holds published state that views and the shell
// subscribe to instead of relying on implicit re-rendering.
package observable

import (
	"slices"
	"sync"
)

type Observable[T any] struct {
	deliver sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]func(T)
}

func New[T any]() *Observable[T] {
	return &Observable[T]{subs: make(map[int]func(T))}
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is safe.
func (o *Observable[T]) Subscribe(fn func(T)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Publish delivers v to every subscriber in subscription order.
func (o *Observable[T]) Publish(v T) {
	o.PublishFunc(func() T { return v })
}

// PublishFunc reads the value and delivers it while holding the delivery
// lock, so deliveries never overlap and a value read later is never
// delivered before one read earlier. Subscribers may subscribe or
// unsubscribe but must not publish on the same Observable.
func (o *Observable[T]) PublishFunc(read func() T) {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	v := read()
	for _, fn := range o.subscribers() {
		fn(v)
	}
}

func (o *Observable[T]) subscribers() []func(T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]int, 0, len(o.subs))
	for id := range o.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.subs[id])
	}
	return fns
}

func (o *Observable[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}
