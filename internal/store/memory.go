package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// MemoryStore keeps sessions in memory. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session.Session),
	}
}

// Save stores a deep copy of the session.
func (s *MemoryStore) Save(ctx context.Context, sess *session.Session) error {
	if !validSessionID(sess.ID) {
		return fmt.Errorf("invalid session id: %q", sess.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a deep copy of the stored session, or [ErrNotFound].
func (s *MemoryStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess.Clone(), nil
}

// List returns copies of every stored session, newest first by creation
// time.
func (s *MemoryStore) List(ctx context.Context) ([]*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess.Clone())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Metadata.CreatedAt.After(sessions[j].Metadata.CreatedAt)
	})
	return sessions, nil
}

// Delete removes a session, or returns [ErrNotFound].
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}
