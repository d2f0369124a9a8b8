// Package application provides the application interface for cognates commands.
//
// Commands accept this interface rather than the concrete App type, so
// they can be tested with the Mock in this package.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            results, err := client.Suggestions(cmd.Context(), args[0])
//	            ...
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/pkg/scene"
)

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the inquiry service client built from configuration.
	Client() (cognates.Client, error)

	// Explorer creates a new explorer session. Configuration supplies the
	// defaults; opts are applied after them.
	Explorer(opts ...cognates.Option) (cognates.Explorer, error)

	// MapOptions returns the globe settings from configuration.
	MapOptions() scene.MapOptions

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, ...).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
