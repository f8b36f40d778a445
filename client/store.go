package client

import "sync"

// Store holds the session state behind a mutex and applies actions through
// the reducer. Reads return snapshots.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore creates a store in the initial anonymous state.
func NewStore() *Store {
	return &Store{state: NewState()}
}

// Dispatch applies an action to the current state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
