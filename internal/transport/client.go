// Package transport provides the HTTP plumbing shared by API clients:
// a rate-limited client with default headers and JSON response decoding.
package transport

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// DefaultUserAgent identifies cognates to remote services.
const DefaultUserAgent = "cognates"

// Client is a rate-limited HTTP client.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit sets requests per second and burst. A non-positive rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		limiter:   rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), constants.BurstSize),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do waits for the rate limiter and performs req with common headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx, req)
		}
		if _, ok := ctx.Deadline(); ok {
			return nil, errors.NewTimeoutError(req.Method+" "+req.URL.Path, "", err.Error())
		}
		return nil, &errors.APIError{Endpoint: req.URL.Path, Message: "rate limiter", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx, req)
		}
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.NewTimeoutError(req.Method+" "+req.URL.Path, c.http.Timeout.String(), err.Error())
		}
		return nil, errors.WrapAPI(req.URL.Path, 0, err)
	}
	return resp, nil
}

// contextError maps a finished ctx to a timeout or a cancellation.
func (c *Client) contextError(ctx context.Context, req *http.Request) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeoutError(req.Method+" "+req.URL.Path, "", ctx.Err().Error())
	}
	return errors.ErrCanceled
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}
