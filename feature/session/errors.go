package session

import "fmt"

// StateError reports that an operation targeted a session in a state that
// forbids it (unknown session, locked session, illegal transition). It is
// distinct from storage errors so callers can tell a rejected event from a
// retryable persistence failure.
type StateError struct {
	SessionID string
	Reason    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("session %s: %s", e.SessionID, e.Reason)
}
