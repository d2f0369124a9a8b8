package render_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/render"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/scene/memory"
	"github.com/agentstation/cognates/pkg/selection"
)

func node(word, code string, lat, lon float64) chains.Node {
	return chains.Node{Word: word, LanguageInfo: chains.LanguageInfo{Code: code, Name: code, Coordinates: chains.Coordinates{lat, lon}}}
}

func result(word, code, concept string) *chains.Result {
	return &chains.Result{Word: word, ConceptID: chains.ConceptID(concept), LanguageInfo: chains.LanguageInfo{Code: code, Coordinates: chains.Coordinates{51.5, -0.12}}}
}

// staticFetcher returns the same chain set for every query and records queries.
type staticFetcher struct {
	mu      sync.Mutex
	set     *chains.ChainSet
	err     error
	queries []chains.Query
}

func (f *staticFetcher) Chains(_ context.Context, q chains.Query) (*chains.ChainSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.set, f.err
}

func (f *staticFetcher) Queries() []chains.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chains.Query(nil), f.queries...)
}

func threeNodes() *chains.ChainSet {
	return &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{
		node("lamp", "en", 51.5, -0.12),
		node("Lampe", "de", 52.5, 13.4),
		node("lampa", "pl", 52.2, 21.0),
	}}}}
}

func setup(t *testing.T, f render.ChainFetcher, opts ...memory.Option) (*render.Renderer, *selection.Store, *memory.Backend) {
	t.Helper()
	store := selection.New()
	backend := memory.New(opts...)
	r := render.New(backend, store, f, render.WithLogger(&logging.Nop))
	require.NoError(t, r.Initialize(context.Background()))
	t.Cleanup(func() { _ = r.Teardown() })
	return r, store, backend
}

func lineArtifacts(ids []string) []string {
	var out []string
	for _, id := range ids {
		if scene.IsLineID(id) {
			out = append(out, id)
		}
	}
	return out
}

func TestInitialize(t *testing.T) {
	store := selection.New()
	backend := memory.New()
	r := render.New(backend, store, &staticFetcher{}, render.WithLogger(&logging.Nop))

	require.NoError(t, r.Initialize(context.Background()))
	assert.Same(t, backend, store.Map())
	assert.Equal(t, scene.DefaultMapOptions(), backend.Options())

	err := r.Initialize(context.Background())
	assert.True(t, errors.IsAlreadyExists(err))

	require.NoError(t, r.Teardown())
	assert.Nil(t, store.Map())
	require.NoError(t, r.Teardown())
}

func TestInitializeFailsWhenStoreHasMap(t *testing.T) {
	store := selection.New()
	require.NoError(t, store.SetMap("other"))

	r := render.New(memory.New(), store, &staticFetcher{}, render.WithLogger(&logging.Nop))
	err := r.Initialize(context.Background())
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestDrawThreeNodeChain(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	assert.Equal(t, []string{"marker-0-0", "marker-0-1", "marker-0-2"}, backend.MarkerIDs("marker"))
	assert.Equal(t, []string{"line-0-0", "line-0-1"}, backend.LayerIDs())
	assert.Equal(t, []string{"line-0-0", "line-0-1"}, backend.SourceIDs())

	cam := backend.Camera()
	assert.Equal(t, -0.12, cam.Center.Lon)
	assert.InDelta(t, 61.5, cam.Center.Lat, 1e-9)
	assert.Equal(t, 3.3, cam.Zoom)
	assert.True(t, cam.Animate)

	st := r.Status()
	assert.Equal(t, 3, st.Markers)
	assert.Equal(t, 2, st.Lines)
	assert.False(t, st.Pending)
}

func TestQueryDependsOnShowAllChains(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, _ := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	store.SetShowAllChains(true)
	r.Wait()

	qs := f.Queries()
	require.Len(t, qs, 2)
	assert.Equal(t, chains.Query{ConceptID: "7", Word: "lamp", Language: "en"}, qs[0])
	assert.Equal(t, chains.Query{ConceptID: "7"}, qs[1])
}

func TestClearBeforeRedraw(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	backend.ResetOps()

	store.SetSelected(result("Lampe", "de", "7"))
	r.Wait()

	ops := backend.Ops()
	firstAdd := -1
	for i, op := range ops {
		if op.Kind == memory.OpAddMarker || op.Kind == memory.OpAddLayer || op.Kind == memory.OpAddSource {
			firstAdd = i
			break
		}
	}
	require.Positive(t, firstAdd)

	removed := map[memory.OpKind]int{}
	for _, op := range ops[:firstAdd] {
		removed[op.Kind]++
	}
	assert.Equal(t, 3, removed[memory.OpRemoveMarker])
	assert.Equal(t, 2, removed[memory.OpRemoveLayer])
	assert.Equal(t, 2, removed[memory.OpRemoveSource])

	assert.Len(t, backend.MarkerIDs("marker"), 3)
}

func TestClearIsIdempotentAndKeepsBaseLayers(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f, memory.WithBaseLayers("background", "countries"))

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	r.Clear()
	r.Clear()

	assert.Empty(t, backend.MarkerIDs("marker"))
	assert.Empty(t, lineArtifacts(backend.LayerIDs()))
	assert.Empty(t, lineArtifacts(backend.SourceIDs()))
	assert.Equal(t, []string{"background", "countries"}, backend.LayerIDs())
}

func TestClearSkipsLayersWhenNotLoaded(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	backend.SetLoaded(false)
	r.Clear()

	assert.Empty(t, backend.MarkerIDs("marker"))
	assert.Len(t, backend.LayerIDs(), 2, "layers stay until the style is loaded")
}

func TestClearSelectionLeavesMapEmpty(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	store.Clear()
	r.Wait()

	assert.Empty(t, backend.MarkerIDs("marker"))
	assert.Empty(t, backend.LayerIDs())
	assert.Len(t, f.Queries(), 1, "clearing does not fetch")
}

func TestFetchFailureLeavesMapCleared(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	f.mu.Lock()
	f.err = errors.NewAPIError("/search/chains/concept/8", 500, "boom")
	f.mu.Unlock()

	store.SetSelected(result("night", "en", "8"))
	r.Wait()

	assert.Empty(t, backend.MarkerIDs("marker"))
	assert.Empty(t, backend.LayerIDs())
	st := r.Status()
	require.Error(t, st.Err)
	assert.Contains(t, st.Error, "boom")
}

// gatedFetcher blocks each concept's fetch until released.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[chains.ConceptID]chan struct{}
	sets  map[chains.ConceptID]*chains.ChainSet
}

func (g *gatedFetcher) gate(id chains.ConceptID) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = map[chains.ConceptID]chan struct{}{}
	}
	ch, ok := g.gates[id]
	if !ok {
		ch = make(chan struct{})
		g.gates[id] = ch
	}
	return ch
}

// Chains ignores ctx cancellation on purpose to model a response that
// arrives after it was superseded.
func (g *gatedFetcher) Chains(_ context.Context, q chains.Query) (*chains.ChainSet, error) {
	<-g.gate(q.ConceptID)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sets[q.ConceptID], nil
}

func TestStaleFetchNeverDrawn(t *testing.T) {
	old := &chains.ChainSet{Chains: []chains.Chain{
		{Nodes: []chains.Node{node("a", "en", 1, 1), node("b", "de", 2, 2)}},
		{Nodes: []chains.Node{node("c", "fr", 3, 3), node("d", "it", 4, 4)}},
	}}
	fresh := &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{node("x", "es", 10, 10)}}}}
	f := &gatedFetcher{sets: map[chains.ConceptID]*chains.ChainSet{"old": old, "new": fresh}}

	r, store, backend := setup(t, f)

	store.SetSelected(result("a", "en", "old"))
	store.SetSelected(result("x", "es", "new"))

	close(f.gate("new"))
	require.Eventually(t, func() bool { return len(backend.MarkerIDs("marker")) == 1 }, time.Second, 5*time.Millisecond)

	close(f.gate("old"))
	r.Wait()

	assert.Equal(t, []string{"marker-0-0"}, backend.MarkerIDs("marker"))
	m, ok := r.Drawn().Marker("marker-0-0")
	require.True(t, ok)
	assert.Equal(t, "x", m.Word)
	assert.Empty(t, backend.LayerIDs())
}

func TestMarkerClickTogglesSinglePanel(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	open, err := r.ClickMarker("marker-0-0")
	require.NoError(t, err)
	assert.Equal(t, "marker-0-0", open)
	assert.Equal(t, []string{"marker-0-0"}, backend.OpenPanels())

	open, err = r.ClickMarker("marker-0-2")
	require.NoError(t, err)
	assert.Equal(t, "marker-0-2", open)
	assert.Equal(t, []string{"marker-0-2"}, backend.OpenPanels())

	open, err = r.ClickMarker("marker-0-2")
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.Empty(t, backend.OpenPanels())

	_, err = r.ClickMarker("marker-9-9")
	assert.True(t, errors.IsNotFound(err))
}

func TestMapClickClosesPanels(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()

	_, err := r.ClickMarker("marker-0-1")
	require.NoError(t, err)
	r.ClickMap()

	assert.Empty(t, backend.OpenPanels())
	assert.Empty(t, r.OpenPanel())
}

func TestRecenter(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	r, store, backend := setup(t, f)

	err := r.Recenter()
	assert.True(t, errors.IsValidationError(err))

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	require.NoError(t, backend.FlyTo(scene.Camera{Center: scene.LngLat{Lon: 100, Lat: 0}, Zoom: 4}))

	require.NoError(t, r.Recenter())
	assert.InDelta(t, 61.5, backend.Camera().Center.Lat, 1e-9)
	assert.Len(t, f.Queries(), 1, "recentering does not refetch")
}

func TestDrawsExistingSelectionOnInitialize(t *testing.T) {
	store := selection.New()
	store.SetSelected(result("lamp", "en", "7"))

	backend := memory.New()
	r := render.New(backend, store, &staticFetcher{set: threeNodes()}, render.WithLogger(&logging.Nop))
	require.NoError(t, r.Initialize(context.Background()))
	defer func() { _ = r.Teardown() }()
	r.Wait()

	assert.Len(t, backend.MarkerIDs("marker"), 3)
}

func TestTeardownClearsAndStopsFollowing(t *testing.T) {
	f := &staticFetcher{set: threeNodes()}
	store := selection.New()
	backend := memory.New()
	r := render.New(backend, store, f, render.WithLogger(&logging.Nop))
	require.NoError(t, r.Initialize(context.Background()))

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	require.NoError(t, r.Teardown())

	assert.Empty(t, backend.MarkerIDs("marker"))
	assert.Empty(t, backend.LayerIDs())
	assert.Nil(t, store.Map())

	store.SetSelected(result("Lampe", "de", "7"))
	assert.Len(t, f.Queries(), 1)
}

type recordingObserver struct {
	mu      sync.Mutex
	cleared int
	drawn   []scene.Graph
	panels  []string
	cameras []scene.Camera
}

func (o *recordingObserver) CameraMoved(cam scene.Camera) {
	o.mu.Lock()
	o.cameras = append(o.cameras, cam)
	o.mu.Unlock()
}

func (o *recordingObserver) SceneCleared() {
	o.mu.Lock()
	o.cleared++
	o.mu.Unlock()
}

func (o *recordingObserver) SceneDrawn(g scene.Graph) {
	o.mu.Lock()
	o.drawn = append(o.drawn, g)
	o.mu.Unlock()
}

func (o *recordingObserver) PanelChanged(open string) {
	o.mu.Lock()
	o.panels = append(o.panels, open)
	o.mu.Unlock()
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	store := selection.New()
	r := render.New(memory.New(), store, &staticFetcher{set: threeNodes()},
		render.WithLogger(&logging.Nop), render.WithObserver(obs))
	require.NoError(t, r.Initialize(context.Background()))
	defer func() { _ = r.Teardown() }()

	store.SetSelected(result("lamp", "en", "7"))
	r.Wait()
	_, err := r.ClickMarker("marker-0-1")
	require.NoError(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.GreaterOrEqual(t, obs.cleared, 1)
	require.Len(t, obs.drawn, 1)
	assert.Len(t, obs.drawn[0].Markers, 3)
	assert.Equal(t, []string{"marker-0-1"}, obs.panels)
	require.Len(t, obs.cameras, 1)
	assert.Equal(t, 3.3, obs.cameras[0].Zoom)
}
