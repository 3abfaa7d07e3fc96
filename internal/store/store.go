// Package store persists sessions.
//
// Two implementations are provided: [FileStore] keeps one YAML file per
// session under a base directory and writes atomically, and [MemoryStore]
// holds sessions in a map for tests and ephemeral use. Both hand out deep
// copies so callers never alias stored state.
package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no session exists for the requested id.
var ErrNotFound = errors.New("session not found")

// validSessionID rejects ids that could escape the store directory.
func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, "/\\") && !strings.Contains(id, "..")
}
