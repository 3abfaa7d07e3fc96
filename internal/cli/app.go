// Package cli implements the ideally command-line interface.
//
// Commands are thin: they parse arguments, call the session service or the
// intent router through the interfaces on [App], and render the result. All
// domain logic lives in the orchestrator and below, so every command is
// testable with the mocks in test_helpers.go.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hollandkevint/ideally-sub002/internal/intent"
	"github.com/hollandkevint/ideally-sub002/internal/orchestrator"
	"github.com/hollandkevint/ideally-sub002/internal/pathway"
	"github.com/hollandkevint/ideally-sub002/internal/session"
)

// SessionService is the slice of the orchestrator the CLI needs.
type SessionService interface {
	CreateSession(ctx context.Context, cfg orchestrator.CreateConfig) (*session.Session, error)
	AdvanceSession(ctx context.Context, sessionID, userInput string) (*orchestrator.Advancement, error)
	GetSession(ctx context.Context, sessionID string) (*session.Session, error)
	CompleteSession(ctx context.Context, sessionID string) (*session.Session, error)
	ListSessions(ctx context.Context) ([]*session.Session, error)
}

// IntentRouter scores free text against the known pathways.
type IntentRouter interface {
	AnalyzeIntent(text string) intent.Recommendation
}

// App carries the collaborators every command needs.
type App struct {
	Sessions SessionService
	Router   IntentRouter
	Pathways *pathway.Registry
}

// NewRootCommand assembles the root command with all subcommands attached.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ideally",
		Short: "Structured strategic-thinking sessions",
		Long: `ideally runs time-boxed strategic thinking sessions.

Describe what you are working on and ideally routes you to a pathway,
walks you through its phases, and produces a summary at the end.`,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRouteCommand(app),
		newPathwaysCommand(app),
		newStartCommand(app),
		newAdvanceCommand(app),
		newStatusCommand(app),
		newListCommand(app),
		newCompleteCommand(app),
		newTemplateCommand(app),
	)
	return root
}

// Execute runs the root command and maps the outcome to a process exit
// code. The caller owns the os.Exit call.
func Execute(app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return code
		}
		return 1
	}
	return 0
}
