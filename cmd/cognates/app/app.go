// Package app provides the application context and dependency management
// for the cognates CLI. It centralizes configuration, logging and the
// lifecycle of the inquiry service client and explorer sessions.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/cognet"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/scene"
)

// App represents the cognates application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu        sync.Mutex
	client    cognates.Client
	fixed     cognates.Client
	explorers []cognates.Explorer
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and the config file and
// can be replaced with functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// MapOptions returns the default globe with the configured style.
func (a *App) MapOptions() scene.MapOptions {
	opts := scene.DefaultMapOptions()
	if a.config.MapStyle != "" {
		opts.Style = a.config.MapStyle
	}
	return opts
}

// Client returns the inquiry service client, creating it on first use.
func (a *App) Client() (cognates.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	a.client = cognet.NewClient(
		cognet.WithBaseURL(a.config.APIURL),
		cognet.WithHTTPClient(a.httpClient()),
		cognet.WithRateLimit(a.config.RateLimit, constants.BurstSize),
		cognet.WithUserAgent(a.userAgent()),
		cognet.WithLogger(a.logger),
	)
	return a.client, nil
}

// Explorer creates an explorer session from the configuration. Unless
// WithClient fixed one, the session gets its own client so that opts can
// redirect its logging.
// Sessions still open at Shutdown are closed there.
func (a *App) Explorer(opts ...cognates.Option) (cognates.Explorer, error) {
	base := []cognates.Option{
		cognates.WithBaseURL(a.config.APIURL),
		cognates.WithHTTPClient(a.httpClient()),
		cognates.WithRateLimit(a.config.RateLimit, constants.BurstSize),
		cognates.WithUserAgent(a.userAgent()),
		cognates.WithDebounce(a.config.Debounce),
		cognates.WithMinPrefix(a.config.MinPrefix),
		cognates.WithSuggestionCacheTTL(a.config.SuggestionCacheTTL),
		cognates.WithMapOptions(a.MapOptions()),
		cognates.WithLogger(a.logger),
	}
	if a.fixed != nil {
		base = append(base, cognates.WithClient(a.fixed))
	}
	ex, err := cognates.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "explorer", "", err)
	}

	a.mu.Lock()
	a.explorers = append(a.explorers, ex)
	a.mu.Unlock()
	return ex, nil
}

// Shutdown closes every explorer session created by the app.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	explorers := a.explorers
	a.explorers = nil
	a.mu.Unlock()

	for _, ex := range explorers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ex.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close explorer during shutdown")
		}
	}
	return nil
}

func (a *App) httpClient() *http.Client {
	return &http.Client{Timeout: a.config.HTTPTimeout}
}

func (a *App) userAgent() string {
	return "cognates/" + a.version
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom inquiry service client for commands and
// explorer sessions (useful for testing).
func WithClient(client cognates.Client) Option {
	return func(a *App) error {
		a.client = client
		a.fixed = client
		return nil
	}
}
