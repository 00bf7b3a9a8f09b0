// Package notifier fans values out to SSE listeners.
package notifier

import "sync"

// DefaultBuffer is the per-listener channel capacity.
const DefaultBuffer = 16

// Notifier broadcasts values to all subscribed listeners.
// A listener whose buffer is full misses the value; listeners detect gaps
// themselves (for example with a sequence number) and resynchronise.
type Notifier[T any] struct {
	mu        sync.RWMutex
	listeners map[chan T]struct{}
	buffer    int
}

// New creates a Notifier with DefaultBuffer capacity per listener.
func New[T any]() *Notifier[T] {
	return NewBuffered[T](DefaultBuffer)
}

// NewBuffered creates a Notifier with the given per-listener capacity.
func NewBuffered[T any](buffer int) *Notifier[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
		buffer:    buffer,
	}
}

// Subscribe returns a channel that receives broadcast values.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, n.buffer)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Broadcast sends v to all listeners and returns how many missed it.
// Non-blocking: if a listener's channel is full, the value is skipped.
func (n *Notifier[T]) Broadcast(v T) (missed int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- v:
		default:
			missed++
		}
	}
	return missed
}

// Len returns the number of listeners.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
