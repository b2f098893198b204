// Package refresh is a process-wide, zero-payload broadcast that lets a view
// which changed data tell unrelated views to reload.
//
// Delivery is fire-and-forget: Trigger calls every subscriber registered at
// the moment of the call, once, on the caller's goroutine. Nothing is
// buffered, so a subscriber registered after a Trigger never sees it.
package refresh

import (
	"slices"
	"sync"
)

type subscription struct {
	id uint64
	fn func()
}

// Signal is the broadcast channel. The zero value is ready to use.
type Signal struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
			s.mu.Unlock()
		})
	}
}

// Trigger notifies every current subscriber exactly once, in registration
// order. Callbacks may subscribe or unsubscribe; such changes apply to the
// next Trigger.
func (s *Signal) Trigger() {
	s.mu.Lock()
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// Len returns the number of current subscribers.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
