// Package search provides the search command.
package search

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/cmd/output"
	"github.com/agentstation/cognates/internal/cmd/table"
)

// NewCommand creates the search command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "search <prefix>",
		Short: "List word suggestions for a prefix",
		Long: `Search asks the inquiry service for words starting with prefix, the
same lookup the explorer's search box runs while you type.`,
		Example: `  cognates search lam
  cognates search nacht -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := app.Explorer()
			if err != nil {
				return err
			}
			defer func() { _ = ex.Close() }()

			results, err := ex.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Logger().Debug().Str("prefix", args[0]).Int("results", len(results)).Msg("Search finished")

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, results, func(wide bool) table.Data {
				return table.ResultsToTableData(results, wide)
			})
		},
	}
}
