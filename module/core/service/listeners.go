package service

import (
	"log"
	"sync"
)

type listener[T any] struct {
	id uint64
	fn func(T)
}

// listenerSet is an ordered set of callbacks. Callbacks run on the emitting
// goroutine, in subscription order; a panicking callback is logged and does
// not stop the others.
type listenerSet[T any] struct {
	name    string
	metrics Metrics

	mu     sync.Mutex
	nextID uint64
	items  []listener[T]
}

func newListenerSet[T any](name string, m Metrics) *listenerSet[T] {
	return &listenerSet[T]{name: name, metrics: orNoop(m)}
}

func (l *listenerSet[T]) add(fn func(T)) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[T]{id: id, fn: fn})
	l.mu.Unlock()
	return func() { l.remove(id) }
}

func (l *listenerSet[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.id == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

func (l *listenerSet[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *listenerSet[T]) snapshot() []listener[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]listener[T], len(l.items))
	copy(out, l.items)
	return out
}

func (l *listenerSet[T]) emit(v T) {
	for _, it := range l.snapshot() {
		l.call(it.fn, v)
	}
}

func (l *listenerSet[T]) call(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s: listener panic: %v", l.name, r)
			l.metrics.ListenerPanic(l.name)
		}
	}()
	fn(v)
}
