// Package events provides in-process broadcast feeds for push-based
// updates: device-list snapshots and transfer progress records.
package events

import "sync"

// Feed broadcasts values of type T to all subscribers
// Publishing is non-blocking: a slow consumer misses values instead of
// stalling the publisher
type Feed[T any] struct {
	mu   sync.RWMutex
	subs map[chan T]struct{}
}

// NewFeed creates a new broadcast feed
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{
		subs: make(map[chan T]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its channel together
// with a cancel function that must be called when the owning scope ends;
// cancel releases the subscription and closes the channel
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 16)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			close(ch)
			f.mu.Unlock()
		})
	}

	return ch, cancel
}

// Publish sends a value to all subscribers
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.subs {
		select {
		case ch <- v:
		default:
			// Drop for slow consumer
		}
	}
}

// Count returns the current number of subscribers
func (f *Feed[T]) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
