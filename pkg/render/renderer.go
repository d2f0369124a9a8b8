// Package render keeps the artifacts on a map consistent with the
// selection: every selection change clears what was drawn, fetches the
// chains for the new selection and draws them.
package render

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/selection"
)

// ChainFetcher loads chains for a query.
type ChainFetcher interface {
	Chains(ctx context.Context, q chains.Query) (*chains.ChainSet, error)
}

// ChainFetcherFunc adapts a function to ChainFetcher.
type ChainFetcherFunc func(ctx context.Context, q chains.Query) (*chains.ChainSet, error)

// Chains implements ChainFetcher.
func (f ChainFetcherFunc) Chains(ctx context.Context, q chains.Query) (*chains.ChainSet, error) {
	return f(ctx, q)
}

// Status describes the last render.
type Status struct {
	Token    selection.Token `json:"token" yaml:"token"`
	Selected *chains.Result  `json:"selected,omitempty" yaml:"selected,omitempty"`
	ShowAll  bool            `json:"show_all_chains" yaml:"show_all_chains"`
	Pending  bool            `json:"pending" yaml:"pending"`
	Markers  int             `json:"markers" yaml:"markers"`
	Lines    int             `json:"lines" yaml:"lines"`
	Err      error           `json:"-" yaml:"-"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Renderer owns one map instance. Only the renderer mutates the backend.
type Renderer struct {
	backend scene.Backend
	store   *selection.Store
	fetcher ChainFetcher
	logger  *zerolog.Logger
	mapOpts scene.MapOptions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	initialized bool
	closed      bool
	lastToken   selection.Token
	fetchCancel context.CancelFunc
	drawn       scene.Graph
	panels      scene.Panels
	status      Status
	unsubscribe func()
	observers   []Observer
}

// Observer is told about every change the renderer makes to the scene.
// It runs with the renderer lock held and must not call back into the
// renderer.
type Observer interface {
	SceneCleared()
	SceneDrawn(g scene.Graph)
	CameraMoved(cam scene.Camera)
	PanelChanged(open string)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMapOptions overrides the options the map is created with.
func WithMapOptions(o scene.MapOptions) Option {
	return func(r *Renderer) {
		r.mapOpts = o
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// New creates a renderer. Call Initialize to create the map.
func New(backend scene.Backend, store *selection.Store, fetcher ChainFetcher, opts ...Option) *Renderer {
	r := &Renderer{
		backend: backend,
		store:   store,
		fetcher: fetcher,
		logger:  logging.Default(),
		mapOpts: scene.DefaultMapOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r
}

// Initialize creates the map once, records its handle in the store and
// starts following selection changes. If something is already selected
// it is drawn right away.
func (r *Renderer) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.ErrClosed
	}
	if r.initialized {
		r.mu.Unlock()
		return errors.ErrAlreadyExists
	}
	if err := r.backend.Open(ctx, r.mapOpts); err != nil {
		r.mu.Unlock()
		return errors.WrapResource("create", "map", "", err)
	}
	if err := r.store.SetMap(r.backend); err != nil {
		_ = r.backend.Close()
		r.mu.Unlock()
		return errors.WrapResource("create", "map", "", err)
	}
	r.initialized = true
	r.mu.Unlock()

	r.unsubscribe = r.store.Subscribe(r.OnSelectionChange)
	r.logger.Debug().Str("style", r.mapOpts.Style).Str("projection", r.mapOpts.Projection).Msg("Map created")

	if st := r.store.Snapshot(); st.Selected != nil {
		r.OnSelectionChange(st)
	}
	return nil
}

// OnSelectionChange clears the map and, when something is selected, starts
// fetching and drawing its chains in the background. Changes older than
// one already handled are ignored.
func (r *Renderer) OnSelectionChange(st selection.State) {
	r.mu.Lock()
	if !r.initialized || r.closed {
		r.mu.Unlock()
		return
	}
	if st.Token < r.lastToken || !r.store.Current(st.Token) {
		r.mu.Unlock()
		r.logger.Debug().Uint64("token", uint64(st.Token)).Msg("Skipping superseded selection change")
		return
	}
	r.lastToken = st.Token
	if r.fetchCancel != nil {
		r.fetchCancel()
		r.fetchCancel = nil
	}

	r.clearLocked()
	r.status = Status{Token: st.Token, Selected: st.Selected, ShowAll: st.ShowAllChains}

	if st.Selected == nil {
		r.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(r.ctx)
	r.fetchCancel = cancel
	r.status.Pending = true
	r.wg.Add(1)
	r.mu.Unlock()

	go r.render(ctx, st)
}

func (r *Renderer) render(ctx context.Context, st selection.State) {
	defer r.wg.Done()

	q := chains.QueryFor(st.Selected, st.ShowAllChains)
	log := r.logger.With().
		Str("concept_id", q.ConceptID.String()).
		Bool("show_all_chains", st.ShowAllChains).
		Uint64("token", uint64(st.Token)).
		Logger()

	set, err := r.fetcher.Chains(ctx, q)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || ctx.Err() != nil || !r.store.Current(st.Token) || st.Token != r.lastToken {
		log.Debug().Err(errors.ErrStaleRequest).Msg("Discarding chains for superseded selection")
		return
	}
	r.status.Pending = false
	if err != nil {
		r.status.Err = err
		r.status.Error = err.Error()
		log.Warn().Err(err).Msg("Failed to fetch chains")
		return
	}

	r.clearLocked()
	g := scene.Build(set, st.Selected)
	r.drawLocked(g, log)
	r.status.Markers = len(r.drawn.Markers)
	r.status.Lines = len(r.drawn.Lines)
	log.Info().Int("chains", set.Len()).Int("markers", r.status.Markers).Int("lines", r.status.Lines).Msg("Drew chains")
}

func (r *Renderer) drawLocked(g scene.Graph, log zerolog.Logger) {
	drawn := scene.Graph{Markers: []scene.Marker{}, Lines: []scene.Line{}}
	for _, m := range g.Markers {
		if err := r.backend.AddMarker(m); err != nil {
			log.Warn().Err(err).Str("marker", m.ID).Msg("Failed to add marker")
			continue
		}
		drawn.Markers = append(drawn.Markers, m)
	}
	for _, l := range g.Lines {
		if err := r.backend.AddLine(l); err != nil {
			log.Warn().Err(err).Str("line", l.ID).Msg("Failed to add line")
			continue
		}
		drawn.Lines = append(drawn.Lines, l)
	}
	if g.Camera != nil {
		drawn.Camera = g.Camera
	}
	r.drawn = drawn
	for _, o := range r.observers {
		o.SceneDrawn(drawn)
	}
	if g.Camera != nil {
		r.flyLocked(*g.Camera, log)
	}
}

func (r *Renderer) flyLocked(cam scene.Camera, log zerolog.Logger) {
	if err := r.backend.FlyTo(cam); err != nil {
		log.Warn().Err(err).Msg("Failed to move camera")
		return
	}
	for _, o := range r.observers {
		o.CameraMoved(cam)
	}
}

// Clear removes every drawn marker and line from the map.
func (r *Renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return
	}
	r.clearLocked()
}

// clearLocked removes all elements with the marker class, then every
// line layer, then every line source. Layers and sources are only touched
// while the map reports itself loaded.
func (r *Renderer) clearLocked() {
	for _, id := range r.backend.MarkerIDs(constants.MarkerClass) {
		if err := r.backend.RemoveMarker(id); err != nil {
			r.logger.Debug().Err(err).Str("marker", id).Msg("Failed to remove marker")
		}
	}
	if r.backend.Loaded() {
		for _, id := range r.backend.LayerIDs() {
			if !scene.IsLineID(id) {
				continue
			}
			if err := r.backend.RemoveLayer(id); err != nil {
				r.logger.Debug().Err(err).Str("layer", id).Msg("Failed to remove layer")
			}
		}
		for _, id := range r.backend.SourceIDs() {
			if !scene.IsLineID(id) {
				continue
			}
			if err := r.backend.RemoveSource(id); err != nil {
				r.logger.Debug().Err(err).Str("source", id).Msg("Failed to remove source")
			}
		}
	}
	r.panels.CloseAll()
	r.drawn = scene.Graph{Markers: []scene.Marker{}, Lines: []scene.Line{}}
	for _, o := range r.observers {
		o.SceneCleared()
	}
}

// ClickMarker toggles the details panel of a marker and hides every other
// panel. It returns the id of the open panel, or "".
func (r *Renderer) ClickMarker(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return "", errors.ErrNotInitialized
	}
	if _, ok := r.drawn.Marker(id); !ok {
		return "", errors.NewNotFoundError("marker", id)
	}
	open := r.panels.Toggle(id)
	r.applyPanelsLocked(open)
	return open, nil
}

// ClickMap handles a click on an empty part of the map: every details
// panel closes.
func (r *Renderer) ClickMap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return
	}
	if r.panels.CloseAll() == "" {
		return
	}
	r.applyPanelsLocked("")
}

func (r *Renderer) applyPanelsLocked(open string) {
	for _, m := range r.drawn.Markers {
		if err := r.backend.ShowPanel(m.ID, m.ID == open); err != nil {
			r.logger.Debug().Err(err).Str("marker", m.ID).Msg("Failed to update panel")
		}
	}
	for _, o := range r.observers {
		o.PanelChanged(open)
	}
}

// OpenPanel returns the id of the marker whose panel is open, or "".
func (r *Renderer) OpenPanel() string {
	return r.panels.Open()
}

// Recenter flies back to the selected word without refetching.
func (r *Renderer) Recenter() error {
	sel := r.store.Selected()
	if sel == nil {
		return errors.NewValidationError("selection", nil, "nothing selected")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return errors.ErrNotInitialized
	}
	cam := scene.CameraFor(sel)
	if err := r.backend.FlyTo(cam); err != nil {
		return errors.WrapResource("move", "camera", "", err)
	}
	for _, o := range r.observers {
		o.CameraMoved(cam)
	}
	return nil
}

// Drawn returns a copy of what the renderer last drew.
func (r *Renderer) Drawn() scene.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := scene.Graph{
		Markers: append([]scene.Marker(nil), r.drawn.Markers...),
		Lines:   append([]scene.Line(nil), r.drawn.Lines...),
		Camera:  r.drawn.Camera,
	}
	return g
}

// Status returns the state of the last render.
func (r *Renderer) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Wait blocks until in-flight renders finish.
func (r *Renderer) Wait() {
	r.wg.Wait()
}

// Teardown stops following the selection, cancels in-flight fetches,
// clears the map, closes it and releases its handle.
func (r *Renderer) Teardown() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	unsub := r.unsubscribe
	wasInitialized := r.initialized
	r.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	r.cancel()
	r.wg.Wait()

	if !wasInitialized {
		return nil
	}

	r.mu.Lock()
	r.clearLocked()
	err := r.backend.Close()
	r.initialized = false
	r.mu.Unlock()

	r.store.ReleaseMap()
	r.logger.Debug().Msg("Map removed")
	return err
}
