package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/internal/transport"
	"github.com/agentstation/cognates/pkg/errors"
)

func TestClientGetHeaders(t *testing.T) {
	var gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	}))
	defer srv.Close()

	c := transport.New(transport.WithUserAgent("cognates-test"), transport.WithRateLimit(0, 0))
	resp, err := c.Get(context.Background(), srv.URL+"/x")
	require.NoError(t, err)

	var out struct {
		Data string `json:"data"`
	}
	require.NoError(t, transport.DecodeResponse(resp, &out))
	assert.Equal(t, "ok", out.Data)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "cognates-test", gotUA)
}

func TestDecodeResponseErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   "down",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsServiceUnavailable(err))
				var apiErr *errors.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "/path", apiErr.Endpoint)
				assert.Equal(t, "down", apiErr.Message)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRateLimited(err))
			},
		},
		{
			name:   "bad json",
			status: http.StatusOK,
			body:   "{not json",
			check: func(t *testing.T, err error) {
				var pe *errors.ParseError
				assert.True(t, errors.As(err, &pe))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := transport.New().Get(context.Background(), srv.URL+"/path")
			require.NoError(t, err)

			var out map[string]any
			err = transport.DecodeResponse(resp, &out)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.New().Get(ctx, srv.URL)
	assert.True(t, errors.IsCanceled(err))
}

// slowServer answers after the request is abandoned or a second passes.
func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientTimeout(t *testing.T) {
	srv := slowServer(t)
	client := transport.New(
		transport.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
		transport.WithRateLimit(0, 0),
	)

	_, err := client.Get(context.Background(), srv.URL+"/slow")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.False(t, errors.IsCanceled(err))

	var te *errors.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "GET /slow", te.Operation)
	assert.Equal(t, "20ms", te.Duration)
}

func TestClientContextDeadline(t *testing.T) {
	srv := slowServer(t)
	client := transport.New(transport.WithRateLimit(0, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.False(t, errors.IsCanceled(err))
}
