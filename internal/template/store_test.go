package template

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingSource wraps a Source and counts fetches.
type countingSource struct {
	inner   Source
	fetches atomic.Int64
}

func (c *countingSource) FetchTemplateBytes(ctx context.Context, id string) ([]byte, error) {
	c.fetches.Add(1)
	return c.inner.FetchTemplateBytes(ctx, id)
}

func newTestStore(t *testing.T, src Source) *Store {
	t.Helper()
	return NewStore(src, zap.NewNop())
}

func TestStore_LoadCachesTemplate(t *testing.T) {
	src := &countingSource{inner: StaticSource{"test-template": []byte(validTemplateYAML)}}
	store := newTestStore(t, src)

	first, err := store.Load(context.Background(), "test-template")
	require.NoError(t, err)

	second, err := store.Load(context.Background(), "test-template")
	require.NoError(t, err)

	assert.Same(t, first, second, "second load should return the cached instance")
	assert.Equal(t, int64(1), src.fetches.Load(), "source should be fetched exactly once")
}

func TestStore_ClearCacheForcesReload(t *testing.T) {
	src := &countingSource{inner: StaticSource{"test-template": []byte(validTemplateYAML)}}
	store := newTestStore(t, src)

	_, err := store.Load(context.Background(), "test-template")
	require.NoError(t, err)

	store.ClearCache()

	_, err = store.Load(context.Background(), "test-template")
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.fetches.Load(), "clear then load should re-validate exactly once")
}

func TestStore_GetCached(t *testing.T) {
	store := newTestStore(t, StaticSource{"test-template": []byte(validTemplateYAML)})

	_, ok := store.GetCached("test-template")
	assert.False(t, ok, "GetCached must not trigger a load")

	_, err := store.Load(context.Background(), "test-template")
	require.NoError(t, err)

	tpl, ok := store.GetCached("test-template")
	require.True(t, ok)
	assert.Equal(t, "test-template", tpl.ID)
}

func TestStore_ValidationFailureNotCached(t *testing.T) {
	// Missing phases: fails validation.
	broken := []byte(`
id: broken
name: Broken
metadata:
  time_estimate: 10
`)
	src := StaticSource{"broken": broken}
	store := newTestStore(t, src)

	_, err := store.Load(context.Background(), "broken")

	ve, ok := IsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Equal(t, "broken", ve.TemplateID)
	assert.NotEmpty(t, ve.Violations)

	_, cached := store.GetCached("broken")
	assert.False(t, cached, "failed validation must not create a cache entry")

	// Fix the source and load again: now succeeds and caches.
	src["broken"] = []byte(`
id: broken
name: Fixed
metadata:
  time_estimate: 10
phases:
  - id: only
    name: Only Phase
    time_minutes: 10
    prompts: [What now?]
`)
	tpl, err := store.Load(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, "Fixed", tpl.Name)

	_, cached = store.GetCached("broken")
	assert.True(t, cached)
}

func TestStore_IDMismatch(t *testing.T) {
	store := newTestStore(t, StaticSource{"other-id": []byte(validTemplateYAML)})

	_, err := store.Load(context.Background(), "other-id")

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Violations[0], "does not match requested id")
}

func TestStore_SourceMiss(t *testing.T) {
	store := newTestStore(t, StaticSource{})

	_, err := store.Load(context.Background(), "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ConcurrentLoadsSingleFetch(t *testing.T) {
	src := &countingSource{inner: StaticSource{"test-template": []byte(validTemplateYAML)}}
	store := newTestStore(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Load(context.Background(), "test-template")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), src.fetches.Load(), "concurrent loads should coalesce")
}

func TestBuiltinSource_LoadsAllBuiltinTemplates(t *testing.T) {
	store := newTestStore(t, BuiltinSource())

	for _, id := range []string{"idea-exploration", "business-model-canvas", "feature-refinement"} {
		tpl, err := store.Load(context.Background(), id)
		require.NoError(t, err, "builtin template %s should validate", id)
		assert.Equal(t, id, tpl.ID)
		assert.NotEmpty(t, tpl.Phases)
	}
}

func TestBuiltinSource_IdeaExplorationPhases(t *testing.T) {
	store := newTestStore(t, BuiltinSource())

	tpl, err := store.Load(context.Background(), "idea-exploration")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(tpl.Phases), 2)
	assert.Equal(t, "ideation", tpl.Phases[0].ID)
	assert.Equal(t, "market_exploration", tpl.Phases[1].ID)
}
