package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// sessionStore is the behavior both implementations share.
type sessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]*session.Session, error)
	Delete(ctx context.Context, id string) error
}

func newStores(t *testing.T) map[string]sessionStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	return map[string]sessionStore{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func sampleSession(id string, createdAt time.Time) *session.Session {
	return &session.Session{
		ID:              id,
		UserID:          "user-1",
		PathwayID:       "new-idea",
		Templates:       []string{"idea-exploration"},
		CurrentTemplate: "idea-exploration",
		CurrentPhase:    "ideation",
		StartedAt:       createdAt,
		Allocations: map[string]session.TimeAllocation{
			"ideation": {Minutes: 10, StartedAt: createdAt},
		},
		Metadata: session.Metadata{
			Status:    session.StatusActive,
			CreatedAt: createdAt,
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			sess := sampleSession("sess-1", now)
			require.NoError(t, s.Save(ctx, sess))

			got, err := s.Get(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, sess.ID, got.ID)
			assert.Equal(t, sess.PathwayID, got.PathwayID)
			assert.Equal(t, sess.CurrentPhase, got.CurrentPhase)
			assert.Equal(t, 10, got.Allocations["ideation"].Minutes)
			assert.Equal(t, session.StatusActive, got.Metadata.Status)
		})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	ctx := context.Background()

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "no-such-session")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			sess := sampleSession("sess-1", now)
			require.NoError(t, s.Save(ctx, sess))

			sess.CurrentPhase = "market_exploration"
			require.NoError(t, s.Save(ctx, sess))

			got, err := s.Get(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, "market_exploration", got.CurrentPhase)
		})
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, sampleSession("older", base)))
			require.NoError(t, s.Save(ctx, sampleSession("newer", base.Add(time.Hour))))

			sessions, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 2)
			assert.Equal(t, "newer", sessions[0].ID)
			assert.Equal(t, "older", sessions[1].ID)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, sampleSession("sess-1", now)))
			require.NoError(t, s.Delete(ctx, "sess-1"))

			_, err := s.Get(ctx, "sess-1")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.Delete(ctx, "sess-1"), ErrNotFound)
		})
	}
}

func TestStore_RejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"", "../escape", "a/b", `a\b`} {
				sess := sampleSession(id, now)
				assert.Error(t, s.Save(ctx, sess), "id %q should be rejected", id)
			}
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(ctx, sampleSession("sess-1", now)), context.Canceled)
			_, err := s.Get(ctx, "sess-1")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestMemoryStore_CopiesOnSaveAndGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()

	sess := sampleSession("sess-1", now)
	require.NoError(t, s.Save(ctx, sess))

	// Mutating the original after Save must not affect the stored copy.
	sess.CurrentPhase = "mutated"

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ideation", got.CurrentPhase)

	// Mutating a returned copy must not affect later reads.
	got.Allocations["ideation"] = session.TimeAllocation{Minutes: 99}
	again, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Allocations["ideation"].Minutes)
}

func TestFileStore_RoundTripsFullState(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	sess := sampleSession("sess-1", now)
	sess.Context.Responses = []session.Response{
		{PhaseID: "ideation", Input: "a subscription box for gardeners", At: now},
	}
	sess.Outputs.PhaseResults = map[string]session.PhaseResult{
		"ideation": {Insights: []string{"niche but passionate market"}, Confidence: 0.7},
	}
	sess.Progress = session.Progress{
		Overall:     0.25,
		ByPhase:     map[string]float64{"ideation": 1.0},
		ByTemplate:  map[string]float64{"idea-exploration": 0.25},
		CurrentStep: "Phase 2 of 4",
	}
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Context.Responses, got.Context.Responses)
	assert.Equal(t, sess.Outputs.PhaseResults, got.Outputs.PhaseResults)
	assert.Equal(t, sess.Progress, got.Progress)
}

func TestFileStore_ListSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleSession("good", now)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.yaml"), []byte(":\n  - not: [valid"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))

	sessions, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "good", sessions[0].ID)
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleSession("sess-1", now)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
