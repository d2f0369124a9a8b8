package cognates

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/scene"
)

// Option configures an Explorer.
type Option func(*config) error

// config holds Explorer settings.
type config struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  float64
	burst      int
	userAgent  string

	debounce  time.Duration
	minPrefix int
	cacheTTL  time.Duration

	backend    scene.Backend
	mapOptions scene.MapOptions
	client     Client
	logger     *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		baseURL:    constants.DefaultAPIURL,
		rateLimit:  constants.DefaultRateLimit,
		burst:      constants.BurstSize,
		debounce:   constants.SearchDebounce,
		minPrefix:  constants.MinPrefixLength,
		cacheTTL:   constants.SuggestionCacheTTL,
		mapOptions: scene.DefaultMapOptions(),
	}
}

// WithBaseURL sets the inquiry service base URL.
func WithBaseURL(url string) Option {
	return func(c *config) error {
		if url == "" {
			return errors.NewValidationError("base_url", url, "cannot be empty")
		}
		c.baseURL = url
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for the inquiry service.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithRateLimit bounds outbound requests per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) error {
		if rps < 0 {
			return errors.NewValidationError("rate_limit", rps, "cannot be negative")
		}
		c.rateLimit = rps
		c.burst = burst
		return nil
	}
}

// WithUserAgent sets the User-Agent sent to the inquiry service.
func WithUserAgent(ua string) Option {
	return func(c *config) error {
		c.userAgent = ua
		return nil
	}
}

// WithDebounce sets the quiet period before a suggestion lookup.
func WithDebounce(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errors.NewValidationError("debounce", d, "cannot be negative")
		}
		c.debounce = d
		return nil
	}
}

// WithMinPrefix sets the shortest input that triggers a lookup.
func WithMinPrefix(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("min_prefix", n, "must be at least 1")
		}
		c.minPrefix = n
		return nil
	}
}

// WithSuggestionCacheTTL sets how long suggestions are reused. Zero disables the cache.
func WithSuggestionCacheTTL(ttl time.Duration) Option {
	return func(c *config) error {
		c.cacheTTL = ttl
		return nil
	}
}

// WithBackend sets the map backend. The default is an in-memory map.
func WithBackend(b scene.Backend) Option {
	return func(c *config) error {
		if b == nil {
			return errors.NewValidationError("backend", nil, "cannot be nil")
		}
		c.backend = b
		return nil
	}
}

// WithMapOptions overrides the options the map is created with.
func WithMapOptions(o scene.MapOptions) Option {
	return func(c *config) error {
		c.mapOptions = o
		return nil
	}
}

// WithClient replaces the inquiry service client, e.g. with a fake in tests.
func WithClient(cl Client) Option {
	return func(c *config) error {
		c.client = cl
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}
