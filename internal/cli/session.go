package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hollandkevint/ideally-sub002/internal/orchestrator"
	"github.com/hollandkevint/ideally-sub002/internal/session"
	"github.com/hollandkevint/ideally-sub002/internal/timebox"
)

func newStartCommand(app *App) *cobra.Command {
	var userID, workspaceID string

	cmd := &cobra.Command{
		Use:   "start <pathway-id>",
		Short: "Start a session on a pathway",
		Long: `Start a new session on the given pathway.

Run "ideally route" first if you are unsure which pathway fits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.CreateSession(cmd.Context(), orchestrator.CreateConfig{
				UserID:      userID,
				WorkspaceID: workspaceID,
				PathwayID:   args[0],
			})
			if err != nil {
				return fail(cmd, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Session started"))
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("id:"), sess.ID)
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("pathway:"), sess.PathwayID)
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("phase:"), sess.CurrentPhase)
			fmt.Fprintf(out, "  %s %d minutes\n", labelStyle.Render("allocation:"), sess.Allocations[sess.CurrentPhase].Minutes)
			fmt.Fprintln(out)
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Answer with: ideally advance %s \"<your thoughts>\"", sess.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to attach to the session")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace id to attach to the session")
	return cmd
}

func newAdvanceCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <session-id> <input...>",
		Short: "Submit input to the current phase",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args[1:], " ")
			adv, err := app.Sessions.AdvanceSession(cmd.Context(), args[0], input)
			if err != nil {
				return fail(cmd, err)
			}

			out := cmd.OutOrStdout()
			if adv.Advanced {
				fmt.Fprintln(out, okStyle.Render(adv.Message))
			} else {
				fmt.Fprintln(out, warnStyle.Render(adv.Message))
			}
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("progress:"), progressBar(adv.Progress.Overall))
			if adv.Progress.CurrentStep != "" {
				fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("now:"), adv.Progress.CurrentStep)
			}
			for _, step := range adv.Progress.NextSteps {
				fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("next:"), dimStyle.Render(step))
			}
			switch adv.TimeWarning {
			case timebox.WarningLow:
				fmt.Fprintln(out, warnStyle.Render("Over 75% of the session time budget is used."))
			case timebox.WarningCritical:
				fmt.Fprintln(out, errStyle.Render("The session time budget is nearly spent."))
			}
			if adv.Action == session.ActionCompleteSession {
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Finalize with: ideally complete %s", adv.SessionID)))
			}
			return nil
		},
	}
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show where a session stands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fail(cmd, err)
			}
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.Sessions.ListSessions(cmd.Context())
			if err != nil {
				return fail(cmd, err)
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No sessions yet. Start one with: ideally start <pathway-id>"))
				return nil
			}
			for _, sess := range sessions {
				fmt.Fprintf(out, "%s  %s  %s  %s\n",
					labelStyle.Render(sess.ID),
					sess.PathwayID,
					statusBadge(sess.Metadata.Status),
					progressBar(sess.Progress.Overall))
			}
			return nil
		},
	}
}

func newCompleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Finalize a session and generate its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.CompleteSession(cmd.Context(), args[0])
			if err != nil {
				return fail(cmd, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, okStyle.Render("Session complete."))
			for _, doc := range sess.Outputs.Documents {
				fmt.Fprintf(out, "  %s %s (%s)\n", labelStyle.Render("document:"), doc.Name, doc.Format)
			}
			for _, item := range sess.Outputs.ActionItems {
				fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("action:"), item.Description)
			}
			return nil
		},
	}
}

func printSession(out io.Writer, sess *session.Session) {
	fmt.Fprintln(out, titleStyle.Render("Session "+sess.ID))
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("pathway:"), sess.PathwayID)
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("status:"), statusBadge(sess.Metadata.Status))
	fmt.Fprintf(out, "  %s %s / %s\n", labelStyle.Render("position:"), sess.CurrentTemplate, sess.CurrentPhase)
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("progress:"), progressBar(sess.Progress.Overall))
	if sess.Progress.CurrentStep != "" {
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("now:"), sess.Progress.CurrentStep)
	}
	for _, step := range sess.Progress.NextSteps {
		fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("next:"), dimStyle.Render(step))
	}
}

func statusBadge(status session.Status) string {
	switch status {
	case session.StatusActive:
		return okStyle.Render(string(status))
	case session.StatusCompleted:
		return dimStyle.Render(string(status))
	case session.StatusAbandoned:
		return errStyle.Render(string(status))
	default:
		return warnStyle.Render(string(status))
	}
}

// progressBar renders a ten-segment completion bar with a percentage.
func progressBar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * 10)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, ratio*100)
}

// fail prints the error and converts it to an exit code.
func fail(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = true
	fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render("Error: ")+err.Error())
	return NewExitError(1)
}
