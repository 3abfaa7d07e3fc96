package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollandkevint/ideally-sub002/internal/template"
)

func newTemplateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Work with template definitions",
	}
	cmd.AddCommand(newTemplateValidateCommand())
	return cmd
}

func newTemplateValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Parse and validate a template definition",
		Long: `Parse a template YAML file and run the semantic validation rules
against it. All violations are reported in one pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fail(cmd, err)
			}

			tpl, err := template.Parse(data)
			if err != nil {
				return fail(cmd, err)
			}

			violations, warnings := template.Validate(tpl)
			for _, w := range warnings {
				fmt.Fprintln(out, warnStyle.Render("warning: ")+w)
			}
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintln(out, errStyle.Render("invalid: ")+v)
				}
				cmd.SilenceUsage = true
				return NewExitError(1)
			}

			fmt.Fprintf(out, "%s %s (%d phases, %d minutes)\n",
				okStyle.Render("valid:"), tpl.Name, len(tpl.Phases), tpl.Metadata.TimeEstimate)
			return nil
		},
	}
}
