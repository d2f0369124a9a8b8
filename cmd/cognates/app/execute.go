package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/cognates/cmd/cognates/cmd/chains"
	"github.com/agentstation/cognates/cmd/cognates/cmd/explore"
	"github.com/agentstation/cognates/cmd/cognates/cmd/scene"
	"github.com/agentstation/cognates/cmd/cognates/cmd/search"
	"github.com/agentstation/cognates/cmd/cognates/cmd/serve"
	"github.com/agentstation/cognates/cmd/cognates/cmd/version"
	"github.com/agentstation/cognates/internal/cmd/output"
)

// Execute runs the cognates CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
// Without a subcommand the root runs the terminal explorer.
func (a *App) createRootCommand() *cobra.Command {
	exploreCmd := explore.NewCommand(a)

	rootCmd := &cobra.Command{
		Use:     "cognates",
		Short:   "Explore cognate word chains on a globe",
		Version: a.version,
		Long: `Cognates are words in different languages that share an origin.

Search for a word and cognates draws every chain of related words on a
globe, in the terminal or in the browser. The data comes from the CogNet
inquiry service.`,
		Args:              cobra.NoArgs,
		RunE:              exploreCmd.RunE,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.Flags().AddFlagSet(exploreCmd.Flags())

	rootCmd.AddGroup(&cobra.Group{
		ID:    "explore",
		Title: "Explore Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "query",
		Title: "Query Commands:",
	})

	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.cognates.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, wide, json, yaml, markdown")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().String("api-url", "", "inquiry service base URL")

	rootCmd.SetVersionTemplate("cognates {{.Version}}\n")

	a.registerCommands(rootCmd, exploreCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	configFile := mustGetString(cmd, "config")
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")
	apiURL := mustGetString(cmd, "api-url")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	// An explicit config file replaces what New loaded.
	if configFile != "" {
		config, err := LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		a.config = config
	}
	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel, apiURL)
	if err := a.config.Validate(); err != nil {
		return err
	}

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd, exploreCmd *cobra.Command) {
	exploreCmd.GroupID = "explore"
	rootCmd.AddCommand(exploreCmd)

	serveCmd := serve.NewCommand(a)
	serveCmd.GroupID = "explore"
	rootCmd.AddCommand(serveCmd)

	for _, cmd := range []*cobra.Command{
		search.NewCommand(a),
		chains.NewCommand(a),
		scene.NewCommand(a),
	} {
		cmd.GroupID = "query"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError prints err and exits with status 1. A nil err does nothing.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
