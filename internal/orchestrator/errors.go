package orchestrator

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when no session exists for the requested id.
// It is a caller error and is never retried internally.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// IsNotFound reports whether err is a [NotFoundError].
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// PersistenceError is returned when the durable store fails. The session
// remains at its last durably persisted state.
type PersistenceError struct {
	SessionID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist session %s: %v", e.SessionID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is a [PersistenceError].
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
