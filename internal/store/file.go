package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// FileStore persists each session as <dir>/<id>.yaml.
//
// Writes go to a temp file first and are renamed into place, so a crash
// mid-write never leaves a truncated session on disk. A store-wide lock
// serializes writers within the process; cross-process locking is out of
// scope.
type FileStore struct {
	dir string
	log *zap.Logger

	mu sync.RWMutex
}

// NewFileStore creates a [FileStore] rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{
		dir: dir,
		log: log.Named("store"),
	}, nil
}

func (s *FileStore) pathFor(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

// Save writes the session to disk, replacing any previous version.
func (s *FileStore) Save(ctx context.Context, sess *session.Session) error {
	if !validSessionID(sess.ID) {
		return fmt.Errorf("invalid session id: %q", sess.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", sess.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fullPath := s.pathFor(sess.ID)
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}

	s.log.Debug("session saved",
		zap.String("session_id", sess.ID),
		zap.String("status", string(sess.Metadata.Status)))
	return nil
}

// Get loads one session by id. Returns [ErrNotFound] if no file exists.
func (s *FileStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if !validSessionID(id) {
		return nil, fmt.Errorf("invalid session id %q: %w", id, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.pathFor(id))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var sess session.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &sess, nil
}

// List loads every session in the store, newest first by creation time.
//
// Unreadable or unparsable files are skipped with a warning so one corrupt
// session cannot hide the rest.
func (s *FileStore) List(ctx context.Context) ([]*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []*session.Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		id := strings.TrimSuffix(name, ".yaml")
		sess, err := s.Get(ctx, id)
		if err != nil {
			s.log.Warn("skipping unreadable session file",
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Metadata.CreatedAt.After(sessions[j].Metadata.CreatedAt)
	})
	return sessions, nil
}

// Delete removes a session file. Returns [ErrNotFound] if it does not exist.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validSessionID(id) {
		return fmt.Errorf("invalid session id %q: %w", id, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
