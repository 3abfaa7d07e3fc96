package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRouteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "route <text...>",
		Short: "Recommend a pathway for what you are working on",
		Long: `Analyze a free-text description of what you are working on and
recommend the best-fitting pathway, with ranked alternatives.

Example:
  ideally route "I have a new startup idea for food delivery"`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")
			rec := app.Router.AnalyzeIntent(text)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Recommended pathway"))
			fmt.Fprintf(out, "  %s %s\n", labelStyle.Render(rec.Pathway), confidenceBadge(rec.Confidence))
			fmt.Fprintf(out, "  %s\n", rec.Reasoning)

			if len(rec.Alternatives) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render("Alternatives"))
				for _, alt := range rec.Alternatives {
					fmt.Fprintf(out, "  %s %s\n", labelStyle.Render(alt.Pathway), confidenceBadge(alt.Confidence))
					fmt.Fprintf(out, "  %s\n", dimStyle.Render(alt.Reasoning))
				}
			}
		},
	}
}

func newPathwaysCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pathways",
		Short: "List the available pathways",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, pw := range app.Pathways.All() {
				fmt.Fprintf(out, "%s  %s\n", labelStyle.Render(pw.ID), pw.Name)
				fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("for:"), pw.TargetUser)
				fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("outcome:"), pw.ExpectedOutcome)
			}
		},
	}
}

// confidenceBadge renders a confidence value with a band-appropriate color.
func confidenceBadge(confidence float64) string {
	text := fmt.Sprintf("(%.0f%% confidence)", confidence*100)
	switch {
	case confidence > 0.7:
		return okStyle.Render(text)
	case confidence > 0.4:
		return warnStyle.Render(text)
	default:
		return dimStyle.Render(text)
	}
}
