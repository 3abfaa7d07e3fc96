package template

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is a caching template loader.
//
// The first [Store.Load] for an id fetches, parses, and validates the
// template; subsequent loads return the cached immutable instance. Loads for
// the same id are coalesced through a singleflight group so a cache stampede
// validates each template exactly once. The cache is safe for concurrent
// readers.
type Store struct {
	source Source
	log    *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*Template
}

// NewStore creates a [Store] backed by the given source.
func NewStore(source Source, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		source: source,
		log:    log.Named("template"),
		cache:  make(map[string]*Template),
	}
}

// Load returns the validated template for the given id, loading and caching
// it on first use.
//
// Load is idempotent and side-effect-free after the first successful call
// for an id. A failed validation returns a [ValidationError] and leaves no
// cache entry, so a corrected source can be loaded afterwards.
func (s *Store) Load(ctx context.Context, templateID string) (*Template, error) {
	s.mu.RLock()
	cached, ok := s.cache[templateID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(templateID, func() (any, error) {
		// Re-check under the group: a concurrent load may have won.
		s.mu.RLock()
		cached, ok := s.cache[templateID]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		return s.loadAndCache(ctx, templateID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

func (s *Store) loadAndCache(ctx context.Context, templateID string) (*Template, error) {
	data, err := s.source.FetchTemplateBytes(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template %q: %w", templateID, err)
	}

	tpl, err := Parse(data)
	if err != nil {
		return nil, &ValidationError{
			TemplateID: templateID,
			Violations: []string{err.Error()},
		}
	}

	if tpl.ID == "" {
		tpl.ID = templateID
	} else if tpl.ID != templateID {
		return nil, &ValidationError{
			TemplateID: templateID,
			Violations: []string{fmt.Sprintf("declared id %q does not match requested id %q", tpl.ID, templateID)},
		}
	}

	violations, warnings := Validate(tpl)
	for _, w := range warnings {
		s.log.Warn("template validation warning",
			zap.String("template_id", templateID),
			zap.String("warning", w))
	}
	if len(violations) > 0 {
		return nil, &ValidationError{TemplateID: templateID, Violations: violations}
	}

	s.mu.Lock()
	s.cache[templateID] = tpl
	s.mu.Unlock()

	s.log.Debug("template loaded",
		zap.String("template_id", templateID),
		zap.Int("phases", len(tpl.Phases)))

	return tpl, nil
}

// GetCached returns a cached template without attempting a load.
//
// A miss is reported through the boolean, not an error.
func (s *Store) GetCached(templateID string) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.cache[templateID]
	return t, ok
}

// ClearCache evicts all cached templates.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*Template)
}
