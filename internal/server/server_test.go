package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/server/events"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/logging"
)

var lamp = chains.Result{
	Word:      "lamp",
	ConceptID: "31",
	LanguageInfo: chains.LanguageInfo{
		Code: "en", Name: "English", Flag: "🇬🇧", Coordinates: chains.Coordinates{51.5, -0.12},
	},
}

// fakeClient answers every lookup with lamp and a three-word chain.
type fakeClient struct{}

func (fakeClient) Suggestions(_ context.Context, _ string) ([]chains.Result, error) {
	return []chains.Result{lamp}, nil
}

func (fakeClient) Chains(_ context.Context, _ chains.Query) (*chains.ChainSet, error) {
	node := func(word, code string, lat, lon float64) chains.Node {
		return chains.Node{Word: word, LanguageInfo: chains.LanguageInfo{Code: code, Coordinates: chains.Coordinates{lat, lon}}}
	}
	return &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{
		node("lamp", "en", 51.5, -0.12),
		node("Lampe", "de", 52.5, 13.4),
		node("lampa", "pl", 52.2, 21.0),
	}}}}, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	srv  *Server
	http *httptest.Server
	base string
}

// gridClient answers chain lookups with chains × nodes distinct words.
type gridClient struct {
	fakeClient
	chains, nodes int
}

func (g gridClient) Chains(_ context.Context, _ chains.Query) (*chains.ChainSet, error) {
	set := &chains.ChainSet{}
	for c := range g.chains {
		var chain chains.Chain
		for n := range g.nodes {
			chain.Nodes = append(chain.Nodes, chains.Node{
				Word: fmt.Sprintf("w%d-%d", c, n),
				LanguageInfo: chains.LanguageInfo{
					Code:        fmt.Sprintf("l%d", n),
					Coordinates: chains.Coordinates{float64(n), float64(c)},
				},
			})
		}
		set.Chains = append(set.Chains, chain)
	}
	return set, nil
}

// countingSubscriber counts events by type.
type countingSubscriber struct {
	mu     sync.Mutex
	counts map[events.EventType]int
}

func (c *countingSubscriber) Send(e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[e.Type]++
	return nil
}

func (c *countingSubscriber) Close() error { return nil }

func (c *countingSubscriber) count(typ events.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[typ]
}

func newTestServer(t *testing.T, start bool) *testServer {
	t.Helper()
	return newTestServerWithClient(t, start, fakeClient{})
}

func newTestServerWithClient(t *testing.T, start bool, client cognates.Client) *testServer {
	t.Helper()
	app := &application.Mock{
		LoggerFunc: func() *zerolog.Logger { return &logging.Nop },
		ExplorerFunc: func(opts ...cognates.Option) (cognates.Explorer, error) {
			opts = append(opts, cognates.WithClient(client))
			return cognates.New(opts...)
		},
	}

	srv, err := New(app, DefaultConfig())
	require.NoError(t, err)
	if start {
		require.NoError(t, srv.Start())
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return &testServer{srv: srv, http: hs, base: hs.URL + "/api/v1"}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.base+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestServerInitialization(t *testing.T) {
	ts := newTestServer(t, true)

	assert.Equal(t, 2, ts.srv.Broker().SubscriberCount())
	assert.Equal(t, "localhost:8080", ts.srv.Addr())
	assert.Equal(t, "localhost:8080", ts.srv.HTTPServer().Addr)
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, false)

	code, _ := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := ts.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, env.Error)

	require.NoError(t, ts.srv.Start())
	code, _ = ts.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSuggestions(t *testing.T) {
	ts := newTestServer(t, true)

	code, env := ts.do(t, http.MethodGet, "/suggestions?prefix=la", nil)
	require.Equal(t, http.StatusOK, code)
	var results []chains.Result
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "lamp", results[0].Word)
	assert.Equal(t, chains.ConceptID("31"), results[0].ConceptID)

	code, env = ts.do(t, http.MethodGet, "/suggestions?prefix=l", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)

	code, _ = ts.do(t, http.MethodPost, "/suggestions?prefix=la", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestSelectionDrawsScene(t *testing.T) {
	ts := newTestServer(t, true)

	code, _ := ts.do(t, http.MethodPut, "/selection", lamp)
	require.Equal(t, http.StatusAccepted, code)
	ts.srv.Explorer().Wait()

	code, env := ts.do(t, http.MethodGet, "/scene", nil)
	require.Equal(t, http.StatusOK, code)
	var snap struct {
		Seq     uint64            `json:"seq"`
		Markers []json.RawMessage `json:"markers"`
		Lines   []json.RawMessage `json:"lines"`
		Camera  *struct {
			Zoom float64 `json:"zoom"`
		} `json:"camera"`
		Selection struct {
			Selected *chains.Result `json:"selected"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Len(t, snap.Markers, 3)
	assert.Len(t, snap.Lines, 2)
	require.NotNil(t, snap.Selection.Selected)
	assert.Equal(t, "lamp", snap.Selection.Selected.Word)

	code, env = ts.do(t, http.MethodDelete, "/selection", nil)
	require.Equal(t, http.StatusAccepted, code)
	assert.Contains(t, string(env.Data), `"selected":null`)
	ts.srv.Explorer().Wait()
	assert.True(t, ts.srv.Explorer().Scene().Empty())
}

func TestSelectionValidation(t *testing.T) {
	ts := newTestServer(t, true)

	code, _ := ts.do(t, http.MethodPut, "/selection", map[string]any{"word": "lamp"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodPut, "/selection/all-chains", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodPost, "/selection/recenter", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAllChainsToggle(t *testing.T) {
	ts := newTestServer(t, true)

	code, env := ts.do(t, http.MethodPut, "/selection/all-chains", map[string]any{"show_all_chains": true})
	require.Equal(t, http.StatusAccepted, code)
	assert.Contains(t, string(env.Data), `"show_all_chains":true`)
	assert.True(t, ts.srv.Explorer().Selection().ShowAllChains)
}

func TestMarkerAndMapClick(t *testing.T) {
	ts := newTestServer(t, true)
	ts.do(t, http.MethodPut, "/selection", lamp)
	ts.srv.Explorer().Wait()

	code, env := ts.do(t, http.MethodPost, "/markers/marker-0-1/click", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"open":"marker-0-1"}`, string(env.Data))

	code, env = ts.do(t, http.MethodPost, "/markers/marker-0-1/click", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"open":""}`, string(env.Data))

	ts.do(t, http.MethodPost, "/markers/marker-0-2/click", nil)
	code, _ = ts.do(t, http.MethodPost, "/map/click", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, ts.srv.Explorer().OpenPanel())

	code, _ = ts.do(t, http.MethodPost, "/markers/marker-9-9/click", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodGet, "/markers/marker-0-1/click", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestWebSocketReplaysSceneOperations(t *testing.T) {
	ts := newTestServer(t, true)

	url := "ws" + strings.TrimPrefix(ts.base, "http") + "/updates/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.Eventually(t, func() bool { return ts.srv.wsHub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	code, _ := ts.do(t, http.MethodPut, "/selection", lamp)
	require.Equal(t, http.StatusAccepted, code)

	counts := map[string]int{}
	var lastSeq uint64
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for counts["camera.fly"] == 0 {
		var msg struct {
			Seq  uint64 `json:"seq"`
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Greater(t, msg.Seq, lastSeq)
		lastSeq = msg.Seq
		counts[msg.Type]++
	}

	assert.Equal(t, 1, counts["selection.changed"])
	assert.Equal(t, 3, counts["marker.added"])
	assert.Equal(t, 2, counts["line.added"])
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, false)

	resp, err := http.Get(ts.http.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), `const base = "/api/v1"`)
	assert.NotContains(t, string(body), "{{API_PREFIX}}")
	// The welcome panel opens on every page load.
	assert.Contains(t, string(body), `welcome.style.display = "flex";`)
	assert.NotContains(t, string(body), "sessionStorage")

	resp, err = http.Get(ts.http.URL + "/nope")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLargeRedrawDeliversEveryEvent(t *testing.T) {
	ts := newTestServerWithClient(t, true, gridClient{chains: 30, nodes: 10})
	counter := &countingSubscriber{counts: map[events.EventType]int{}}
	ts.srv.Broker().Subscribe(counter)

	url := "ws" + strings.TrimPrefix(ts.base, "http") + "/updates/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.srv.wsHub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	code, _ := ts.do(t, http.MethodPut, "/selection", lamp)
	require.Equal(t, http.StatusAccepted, code)
	ts.srv.Explorer().Wait()

	g := ts.srv.Explorer().Scene()
	require.Len(t, g.Markers, 300)
	require.Len(t, g.Lines, 270)

	require.Eventually(t, func() bool {
		return counter.count(events.MarkerAdded) == 300 && counter.count(events.LineAdded) == 270
	}, 2*time.Second, 10*time.Millisecond)

	counts := map[string]int{}
	var lastSeq uint64
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for counts["camera.fly"] == 0 {
		var msg struct {
			Seq  uint64 `json:"seq"`
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		require.Greater(t, msg.Seq, lastSeq)
		lastSeq = msg.Seq
		counts[msg.Type]++
	}
	assert.Equal(t, 300, counts["marker.added"])
	assert.Equal(t, 270, counts["line.added"])
}
