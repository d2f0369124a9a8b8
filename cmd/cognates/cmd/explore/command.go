// Package explore provides the explore command, the full-screen terminal
// explorer. It is also what cognates runs without a subcommand.
package explore

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/globe"
	"github.com/agentstation/cognates/internal/tui"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
)

// NewCommand creates the explore command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore cognate chains on a terminal globe",
		Long: `Explore opens a search box above a globe drawn in the terminal. Type a
word, pick a suggestion and its chains are drawn in colour between the
languages they pass through.

Keys: type to search, ↑/↓ and enter to pick, tab to move between the
selected word and the markers, arrows and +/- to move the globe, ctrl+a to
show all chains of the concept, ctrl+x to clear, ctrl+c to quit.

The screen belongs to the explorer, so logs are dropped unless --log-file
names a file for them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logFile, _ := cmd.Flags().GetString("log-file")
			noWelcome, _ := cmd.Flags().GetBool("no-welcome")
			noColor, _ := cmd.Flags().GetBool("no-color")

			logger, closeLog, err := sessionLogger(app.Logger(), logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			backend := globe.NewBackend()
			ex, err := app.Explorer(cognates.WithBackend(backend), cognates.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() { _ = ex.Close() }()

			if err := ex.Start(cmd.Context()); err != nil {
				return err
			}
			logger.Info().Msg("Terminal explorer started")

			var opts []tui.Option
			if noWelcome {
				opts = append(opts, tui.WithoutWelcome())
			}
			if noColor {
				opts = append(opts, tui.WithPlain())
			}
			return tui.Run(cmd.Context(), tui.New(ex, backend, opts...))
		},
	}

	cmd.Flags().String("log-file", "", "write logs to this file while the explorer runs")
	cmd.Flags().Bool("no-welcome", false, "skip the welcome panel")
	return cmd
}

// sessionLogger keeps the app's level and appends JSON events to path, or
// drops them when path is empty.
func sessionLogger(base *zerolog.Logger, path string) (*zerolog.Logger, func(), error) {
	if path == "" {
		l := zerolog.Nop()
		return &l, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	l := logging.New(f).Level(base.GetLevel()).With().Str("component", "explore").Logger()
	return &l, func() { _ = f.Close() }, nil
}
