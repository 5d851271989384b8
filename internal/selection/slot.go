// Package selection holds the shared "current selection" handed from the
// provider list to the views it opens.
package selection

import "sync"

// Slot is a single-value holder with last-value replay. Subscribers receive
// the current value on subscribe and every later Set; a slow subscriber only
// ever sees the newest value.
type Slot[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	nextID int
	subs   map[int]chan T
}

// New returns an empty slot.
func New[T any]() *Slot[T] {
	return &Slot[T]{subs: map[int]chan T{}}
}

// Set stores v and publishes it.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.set = true
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Get returns the current value.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

// Clear empties the slot. Subscribers are not notified.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.set = false
}

// Subscribe returns a channel of values and a cancel func that closes it.
func (s *Slot[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan T, 1)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if s.set {
		ch <- s.value
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces any undelivered value with v. Callers hold the slot lock.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
