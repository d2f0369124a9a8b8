// Package scene provides the scene command, which renders a selection on
// an in-memory map and prints what the globe would show.
package scene

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/cmd/application"
	chainscmd "github.com/agentstation/cognates/cmd/cognates/cmd/chains"
	"github.com/agentstation/cognates/internal/cmd/output"
	"github.com/agentstation/cognates/internal/cmd/table"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/scene/memory"
)

// NewCommand creates the scene command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene <concept-id>",
		Short: "Render a word's chains headless and print the scene",
		Long: `Scene selects a word the way the explorer does and prints the markers,
lines and camera move drawn for it.`,
		Example: `  cognates scene 31 --word lamp --lang en
  cognates scene 31 --word lamp --lang en --all -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			word, _ := cmd.Flags().GetString("word")
			lang, _ := cmd.Flags().GetString("lang")
			all, _ := cmd.Flags().GetBool("all")
			if word == "" || lang == "" {
				return errors.NewValidationError("word", word, "--word and --lang are required")
			}

			g, err := Render(cmd.Context(), app, chains.Result{
				Word:         word,
				ConceptID:    chains.ConceptID(args[0]),
				LanguageInfo: chains.LanguageInfo{Code: lang},
			}, all)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, g, func(wide bool) table.Data {
				return table.SceneToTableData(g, wide)
			})
		},
	}
	chainscmd.AddQueryFlags(cmd)
	return cmd
}

// Render draws the chains of r on a memory map and returns the result.
// The word is looked up first so the camera gets the language's position.
func Render(ctx context.Context, app application.Application, r chains.Result, showAll bool) (scene.Graph, error) {
	ex, err := app.Explorer(cognates.WithBackend(memory.New(memory.WithoutOpLog())))
	if err != nil {
		return scene.Graph{}, err
	}
	defer func() { _ = ex.Close() }()

	if err := ex.Start(ctx); err != nil {
		return scene.Graph{}, err
	}

	if results, err := ex.Search(ctx, r.Word); err == nil {
		for _, found := range results {
			if found.ConceptID == r.ConceptID && found.LanguageInfo.Code == r.LanguageInfo.Code {
				r = found
				break
			}
		}
	} else {
		app.Logger().Debug().Err(err).Str("word", r.Word).Msg("Word lookup failed, camera uses no position")
	}

	ex.SetShowAllChains(showAll)
	if err := ex.Select(&r); err != nil {
		return scene.Graph{}, err
	}
	ex.Wait()

	if st := ex.Status(); st.Err != nil {
		return scene.Graph{}, st.Err
	}
	return ex.Scene(), nil
}
