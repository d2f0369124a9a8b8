package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "COGNATES"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// Inquiry service
	APIURL      string
	HTTPTimeout time.Duration
	RateLimit   float64

	// Explorer
	Debounce           time.Duration
	MinPrefix          int
	SuggestionCacheTTL time.Duration
	MapStyle           string

	// Logging configuration
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (COGNATES_*)
// 3. .env files
// 4. Config file (~/.cognates.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file, as given by
// --config. An empty path falls back to COGNATES_CONFIG and then to the
// default locations.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".cognates")
	}

	// The default file is optional; an explicit one must be readable.
	if err := v.ReadInConfig(); err != nil && path != "" {
		return nil, errors.NewConfigError("config", "reading "+path, err)
	}

	config := &Config{
		Verbose:  v.GetBool("verbose"),
		Quiet:    v.GetBool("quiet"),
		NoColor:  v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:   v.GetString("format"),
		LogLevel: v.GetString("log-level"),

		ConfigFile: v.ConfigFileUsed(),

		APIURL:      v.GetString("api_url"),
		HTTPTimeout: v.GetDuration("http_timeout"),
		RateLimit:   v.GetFloat64("rate_limit"),

		Debounce:           v.GetDuration("debounce"),
		MinPrefix:          v.GetInt("min_prefix"),
		SuggestionCacheTTL: v.GetDuration("suggestion_cache_ttl"),
		MapStyle:           v.GetString("map_style"),

		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", constants.DefaultAPIURL)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("rate_limit", constants.DefaultRateLimit)
	v.SetDefault("debounce", constants.SearchDebounce)
	v.SetDefault("min_prefix", constants.MinPrefixLength)
	v.SetDefault("suggestion_cache_ttl", constants.SuggestionCacheTTL)
	v.SetDefault("map_style", constants.MapStyleURL)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate rejects settings the explorer cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.APIURL == "":
		return &errors.ConfigError{Component: "api_url", Message: "cannot be empty"}
	case c.HTTPTimeout < 0:
		return &errors.ConfigError{Component: "http_timeout", Message: "cannot be negative"}
	case c.RateLimit < 0:
		return &errors.ConfigError{Component: "rate_limit", Message: "cannot be negative"}
	case c.Debounce < 0:
		return &errors.ConfigError{Component: "debounce", Message: "cannot be negative"}
	case c.MinPrefix < 1:
		return &errors.ConfigError{Component: "min_prefix", Message: "must be at least 1"}
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags so that flag values
// take precedence over the config file and env vars. Boolean flags can
// only switch a setting on.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, apiURL string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if apiURL != "" {
		c.APIURL = apiURL
	}
}

// loadEnvFiles loads environment variables from .env files. godotenv never
// overrides a variable that is already set, so .env.local goes first.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
