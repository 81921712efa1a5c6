package inbox

import "sync"

// Binding routes the admin's next message to the sender of a stored suggestion.
type Binding struct {
	TargetUserID int64
	MessageID    int64
}

// Sessions keeps the per-user suggestion flags and per-admin reply bindings
// for the lifetime of the process. Take* calls read and clear a key under one
// lock, so two concurrent updates for the same key can never both consume it.
type Sessions struct {
	mu         sync.Mutex
	suggesting map[int64]struct{}
	bindings   map[int64]Binding
}

// NewSessions returns an empty session store.
func NewSessions() *Sessions {
	return &Sessions{
		suggesting: make(map[int64]struct{}),
		bindings:   make(map[int64]Binding),
	}
}

// EnterSuggestion marks the user's next message as a suggestion.
func (s *Sessions) EnterSuggestion(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggesting[userID] = struct{}{}
}

// InSuggestion reports whether the user's flag is set.
func (s *Sessions) InSuggestion(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.suggesting[userID]
	return ok
}

// TakeSuggestion clears the user's flag and reports whether it was set.
func (s *Sessions) TakeSuggestion(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.suggesting[userID]
	delete(s.suggesting, userID)
	return ok
}

// Bind sets (or overwrites) the reply binding of an admin session.
func (s *Sessions) Bind(sessionID int64, b Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[sessionID] = b
}

// PeekBinding returns the session's binding without clearing it.
func (s *Sessions) PeekBinding(sessionID int64) (Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[sessionID]
	return b, ok
}

// TakeBinding clears the session's binding and returns it.
func (s *Sessions) TakeBinding(sessionID int64) (Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[sessionID]
	delete(s.bindings, sessionID)
	return b, ok
}

// RestoreBinding puts back a binding taken for a reply that failed. A newer
// selection made in the meantime wins.
func (s *Sessions) RestoreBinding(sessionID int64, b Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bindings[sessionID]; !ok {
		s.bindings[sessionID] = b
	}
}
