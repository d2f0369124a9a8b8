// Package cognet is the client for the CogNet world inquiry service, which
// serves word suggestions and cognate chains.
package cognet

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates/internal/transport"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
)

// envelope is the service's response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// Client talks to the inquiry service.
type Client struct {
	baseURL   string
	transport *transport.Client
	logger    *zerolog.Logger

	httpClient *http.Client
	rps        float64
	burst      int
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the service base URL, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the outbound request rate. Zero disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.rps = rps
		c.burst = burst
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an inquiry service client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   constants.DefaultAPIURL,
		logger:    logging.Default(),
		rps:       constants.DefaultRateLimit,
		burst:     constants.BurstSize,
		userAgent: transport.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = transport.New(
		transport.WithHTTPClient(c.httpClient),
		transport.WithRateLimit(c.rps, c.burst),
		transport.WithUserAgent(c.userAgent),
	)
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SuggestionsURL builds the suggestion lookup URL for prefix.
func (c *Client) SuggestionsURL(prefix string) string {
	v := url.Values{}
	v.Set("prefix", prefix)
	return c.baseURL + constants.SuggestionsPath + "?" + v.Encode()
}

// ChainsURL builds the chain lookup URL for q. The word and lang
// parameters are only present when q filters by word.
func (c *Client) ChainsURL(q chains.Query) string {
	u := c.baseURL + constants.ChainsPath + url.PathEscape(q.ConceptID.String())
	if q.All() {
		return u
	}
	v := url.Values{}
	v.Set("word", q.Word)
	v.Set("lang", q.Language)
	return u + "?" + v.Encode()
}

// Suggestions returns the words matching prefix.
func (c *Client) Suggestions(ctx context.Context, prefix string) ([]chains.Result, error) {
	var out envelope[[]chains.Result]
	if err := c.get(ctx, c.SuggestionsURL(prefix), &out); err != nil {
		return nil, errors.WrapResource("fetch", "suggestions", prefix, err)
	}
	if out.Data == nil {
		out.Data = []chains.Result{}
	}
	c.logger.Debug().Str("prefix", prefix).Int("results", len(out.Data)).Msg("Fetched suggestions")
	return out.Data, nil
}

// Chains returns the chains selected by q.
func (c *Client) Chains(ctx context.Context, q chains.Query) (*chains.ChainSet, error) {
	if q.ConceptID == "" {
		return nil, errors.NewValidationError("concept_id", q.ConceptID, "is required")
	}
	var out envelope[chains.ChainSet]
	if err := c.get(ctx, c.ChainsURL(q), &out); err != nil {
		return nil, errors.WrapResource("fetch", "chains", q.ConceptID.String(), err)
	}
	c.logger.Debug().
		Str("concept_id", q.ConceptID.String()).
		Bool("all", q.All()).
		Int("chains", out.Data.Len()).
		Msg("Fetched chains")
	return &out.Data, nil
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	resp, err := c.transport.Get(ctx, u)
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, target)
}
