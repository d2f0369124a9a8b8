// Package chains provides the chains command.
package chains

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/cmd/output"
	"github.com/agentstation/cognates/internal/cmd/table"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
)

// NewCommand creates the chains command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chains <concept-id>",
		Short: "List the cognate chains of a concept",
		Long: `Chains fetches the chains of related words for a concept. With --word
and --lang only the chains through that word are listed; --all lists every
chain of the concept.`,
		Example: `  cognates chains 31 --word lamp --lang en
  cognates chains 31 --all -o wide`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := ParseQuery(cmd, args[0])
			if err != nil {
				return err
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			set, err := client.Chains(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.Logger().Debug().
				Str("concept_id", q.ConceptID.String()).
				Int("chains", set.Len()).
				Int("nodes", set.NodeCount()).
				Msg("Chains fetched")

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, set, func(wide bool) table.Data {
				return table.ChainsToTableData(set, wide)
			})
		},
	}
	AddQueryFlags(cmd)
	return cmd
}

// AddQueryFlags adds the flags read by ParseQuery.
func AddQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("word", "", "word the chains must pass through")
	cmd.Flags().String("lang", "", "language code of --word")
	cmd.Flags().Bool("all", false, "every chain of the concept")
}

// ParseQuery builds the chain query for conceptID from the flags. --word
// and --lang are required unless --all is set, which drops them.
func ParseQuery(cmd *cobra.Command, conceptID string) (chains.Query, error) {
	word, _ := cmd.Flags().GetString("word")
	lang, _ := cmd.Flags().GetString("lang")
	all, _ := cmd.Flags().GetBool("all")

	if conceptID == "" {
		return chains.Query{}, errors.NewValidationError("concept-id", conceptID, "is required")
	}
	q := chains.Query{ConceptID: chains.ConceptID(conceptID)}
	if all {
		return q, nil
	}
	if word == "" || lang == "" {
		return chains.Query{}, errors.NewValidationError("word", word, "--word and --lang are required without --all")
	}
	q.Word = word
	q.Language = lang
	return q, nil
}
