package app

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/internal/cognet"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
)

type fakeClient struct{}

func (fakeClient) Suggestions(context.Context, string) ([]chains.Result, error) {
	return []chains.Result{{Word: "lamp", ConceptID: "31", LanguageInfo: chains.LanguageInfo{Code: "en", Name: "English"}}}, nil
}

func (fakeClient) Chains(context.Context, chains.Query) (*chains.ChainSet, error) {
	return &chains.ChainSet{}, nil
}

func testConfig() *Config {
	return &Config{
		APIURL:    "http://localhost:9000/api/v1",
		MinPrefix: constants.MinPrefixLength,
		LogFormat: "json",
		LogOutput: "discard",
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	nop := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2026-01-01", "test",
		append([]Option{WithConfig(testConfig()), WithLogger(&nop)}, opts...)...)
	require.NoError(t, err)
	return app
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2026-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
}

// TestApp_Client_Singleton verifies that Client() returns one instance
// configured from the app.
func TestApp_Client_Singleton(t *testing.T) {
	app := newTestApp(t)

	var wg sync.WaitGroup
	clients := make([]any, 8)
	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := app.Client()
			assert.NoError(t, err)
			clients[i] = c
		}()
	}
	wg.Wait()

	for _, c := range clients[1:] {
		assert.Same(t, clients[0], c)
	}
	cl, ok := clients[0].(*cognet.Client)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9000/api/v1", cl.BaseURL())
}

// TestApp_Explorer verifies sessions use the fixed client and are closed at shutdown.
func TestApp_Explorer(t *testing.T) {
	app := newTestApp(t, WithClient(fakeClient{}))

	ex, err := app.Explorer()
	require.NoError(t, err)

	results, err := ex.Search(context.Background(), "lam")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "lamp", results[0].Word)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Empty(t, app.explorers)
}

// TestApp_MapOptions verifies the configured style.
func TestApp_MapOptions(t *testing.T) {
	cfg := testConfig()
	cfg.MapStyle = "https://tiles.example/style.json"
	app := newTestApp(t, WithConfig(cfg))

	opts := app.MapOptions()
	assert.Equal(t, "https://tiles.example/style.json", opts.Style)
	assert.Equal(t, constants.MapProjection, opts.Projection)
}

// TestApp_Execute runs commands through the root command.
func TestApp_Execute(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		app := newTestApp(t, WithClient(fakeClient{}))
		root := app.createRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"search", "lam", "-o", "json"})
		require.NoError(t, root.ExecuteContext(context.Background()))

		var results []chains.Result
		require.NoError(t, json.Unmarshal(out.Bytes(), &results))
		assert.Len(t, results, 1)
	})

	t.Run("invalid format", func(t *testing.T) {
		app := newTestApp(t, WithClient(fakeClient{}))
		err := app.Execute(context.Background(), []string{"search", "lam", "-o", "xml"})
		assert.Error(t, err)
	})

	t.Run("api url flag", func(t *testing.T) {
		app := newTestApp(t)
		root := app.createRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"version", "--api-url", "http://other.test/api"})
		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.Equal(t, "http://other.test/api", app.Config().APIURL)
	})
}
