package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// mockAnalyzer returns a canned result or error and records how it was
// called.
type mockAnalyzer struct {
	result session.PhaseResult
	err    error

	calls     atomic.Int64
	lastPhase string
	lastInput string
}

func (m *mockAnalyzer) Analyze(_ context.Context, phaseID, userInput string, _ session.Context) (session.PhaseResult, error) {
	m.calls.Add(1)
	m.lastPhase = phaseID
	m.lastInput = userInput
	if m.err != nil {
		return session.PhaseResult{}, m.err
	}
	return m.result, nil
}

// insightAnalyzer is a mockAnalyzer that always satisfies the default
// completion rule.
func insightAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{
		result: session.PhaseResult{
			Insights:   []string{"the problem is real and underserved"},
			Confidence: 0.8,
		},
	}
}

// mockDocGen returns canned documents and action items.
type mockDocGen struct {
	docs    []session.Document
	items   []session.ActionItem
	docErr  error
	itemErr error
}

func (m *mockDocGen) GenerateDocuments(_ context.Context, _ *session.Session) ([]session.Document, error) {
	if m.docErr != nil {
		return nil, m.docErr
	}
	return m.docs, nil
}

func (m *mockDocGen) ExtractActionItems(_ context.Context, _ *session.Session) ([]session.ActionItem, error) {
	if m.itemErr != nil {
		return nil, m.itemErr
	}
	return m.items, nil
}

// flakyStore wraps a SessionStore and fails Save after a set number of
// successes.
type flakyStore struct {
	SessionStore
	saves     atomic.Int64
	failAfter int64
}

var errStoreDown = errors.New("store is down")

func (f *flakyStore) Save(ctx context.Context, sess *session.Session) error {
	if f.saves.Add(1) > f.failAfter {
		return errStoreDown
	}
	return f.SessionStore.Save(ctx, sess)
}
