package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/hollandkevint/ideally-sub002/internal/intent"
	"github.com/hollandkevint/ideally-sub002/internal/orchestrator"
	"github.com/hollandkevint/ideally-sub002/internal/pathway"
	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// MockSessionService records calls and returns canned values.
type MockSessionService struct {
	// CreatedConfigs records every CreateSession call.
	CreatedConfigs []orchestrator.CreateConfig
	// AdvancedInputs records every AdvanceSession input, keyed by session id.
	AdvancedInputs map[string][]string
	// CompletedIDs records every CompleteSession call.
	CompletedIDs []string

	Session     *session.Session
	Advancement *orchestrator.Advancement
	Sessions    []*session.Session
	Err         error
}

func (m *MockSessionService) CreateSession(_ context.Context, cfg orchestrator.CreateConfig) (*session.Session, error) {
	m.CreatedConfigs = append(m.CreatedConfigs, cfg)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *MockSessionService) AdvanceSession(_ context.Context, sessionID, userInput string) (*orchestrator.Advancement, error) {
	if m.AdvancedInputs == nil {
		m.AdvancedInputs = make(map[string][]string)
	}
	m.AdvancedInputs[sessionID] = append(m.AdvancedInputs[sessionID], userInput)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Advancement, nil
}

func (m *MockSessionService) GetSession(_ context.Context, sessionID string) (*session.Session, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *MockSessionService) CompleteSession(_ context.Context, sessionID string) (*session.Session, error) {
	m.CompletedIDs = append(m.CompletedIDs, sessionID)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *MockSessionService) ListSessions(_ context.Context) ([]*session.Session, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sessions, nil
}

// MockRouter returns a canned recommendation and records the routed text.
type MockRouter struct {
	Recommendation intent.Recommendation
	RoutedText     string
}

func (m *MockRouter) AnalyzeIntent(text string) intent.Recommendation {
	m.RoutedText = text
	return m.Recommendation
}

// runCommand executes the CLI against the given app and returns the
// combined output and exit code.
func runCommand(t *testing.T, app *App, args ...string) (string, int) {
	t.Helper()

	if app.Pathways == nil {
		app.Pathways = pathway.DefaultRegistry()
	}

	var buf bytes.Buffer
	root := NewRootCommand(app)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	code := 0
	if err := root.Execute(); err != nil {
		if c, ok := IsExitError(err); ok {
			code = c
		} else {
			code = 1
		}
	}
	return buf.String(), code
}
