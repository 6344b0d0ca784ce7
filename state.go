package session

import (
	"sync"
)

// Status is the lifecycle phase of the session state.
type Status string

const (
	// StatusUninitialized is the value at process start, before hydration.
	StatusUninitialized Status = "uninitialized"
	// StatusAuthenticated means a current identity is published.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated means nobody is logged in.
	StatusUnauthenticated Status = "unauthenticated"
)

// State is the single authoritative "current identity or none" value.
// Identity is non-nil exactly when Status is StatusAuthenticated.
type State struct {
	Status   Status
	Identity *Identity
}

// Authenticated builds an authenticated state for identity.
func Authenticated(identity Identity) State {
	return State{Status: StatusAuthenticated, Identity: &identity}
}

// Unauthenticated builds the logged-out state.
func Unauthenticated() State {
	return State{Status: StatusUnauthenticated}
}

// Observer is notified synchronously on every accepted state change.
type Observer func(State)

// SessionState owns the current State and the observer list. It is mutated
// only by the Manager; UI code reads and subscribes. Transitions are
// monotonic: after hydration moves the state out of StatusUninitialized it
// never returns there within the session lifetime.
type SessionState struct {
	mu        sync.Mutex
	current   State
	observers []stateObserver
	nextID    int
}

type stateObserver struct {
	id int
	fn Observer
}

// NewSessionState returns a state holder starting at StatusUninitialized.
// Each instance is independent, so tests can run any number side by side.
func NewSessionState() *SessionState {
	return &SessionState{
		current: State{Status: StatusUninitialized},
	}
}

// Get returns the current state.
func (s *SessionState) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set publishes next and notifies all current subscribers in registration
// order before returning; each subscriber sees exactly one notification per
// accepted call. A transition back to StatusUninitialized is invalid and
// rejected (returns false). Set belongs to the Manager; UI code must treat
// the session state as read-only.
func (s *SessionState) Set(next State) bool {
	if !validTransition(next.Status) {
		return false
	}

	s.mu.Lock()
	s.current = next
	observers := make([]stateObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	// Notify outside the lock so observers may call Get or Subscribe.
	for _, o := range observers {
		o.fn(next)
	}

	return true
}

// Subscribe registers an observer and returns its unsubscribe function.
// Calling unsubscribe more than once is a no-op.
func (s *SessionState) Subscribe(fn Observer) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, stateObserver{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func validTransition(to Status) bool {
	switch to {
	case StatusAuthenticated, StatusUnauthenticated:
		return true
	default:
		return false
	}
}
