// Package cognates is an explorer session for cognate word chains: a
// suggestion search feeding a shared selection, and a renderer that keeps
// a globe's markers and lines in step with that selection.
//
//	ex, err := cognates.New(cognates.WithBackend(myGlobe))
//	if err != nil { ... }
//	defer ex.Close()
//	if err := ex.Start(ctx); err != nil { ... }
//	ex.Input("lam")          // debounced lookup
//	ex.Pick(0)               // draws the chains of the first suggestion
package cognates

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates/internal/cognet"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/render"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/scene/memory"
	"github.com/agentstation/cognates/pkg/search"
	"github.com/agentstation/cognates/pkg/selection"
)

// Client is the inquiry service as the explorer uses it.
type Client interface {
	search.SuggestionFetcher
	render.ChainFetcher
}

// Explorer is one interactive session.
type Explorer interface {
	// Start creates the map and begins following the selection.
	Start(ctx context.Context) error

	// Input records typed text; a lookup runs once typing pauses.
	Input(text string)

	// Search looks up suggestions immediately.
	Search(ctx context.Context, text string) ([]chains.Result, error)

	// Pick selects suggestion i of the open dropdown.
	Pick(i int) (*chains.Result, error)

	// Select replaces the selection with r.
	Select(r *chains.Result) error

	// ClearSelection removes the selection and everything drawn for it.
	ClearSelection()

	// ClearSearch empties the search input and closes the dropdown.
	ClearSearch()

	// DismissSearch closes the dropdown and keeps the input.
	DismissSearch()

	// ToggleAllChains switches between the selected word's chains and
	// every chain of its concept, returning the new mode.
	ToggleAllChains() bool

	// SetShowAllChains sets the chain mode.
	SetShowAllChains(v bool)

	// ClickMarker toggles a marker's details panel.
	ClickMarker(id string) (string, error)

	// ClickMap closes any open details panel.
	ClickMap()

	// Recenter flies back to the selected word.
	Recenter() error

	Selection() selection.State
	SearchState() search.Snapshot
	Scene() scene.Graph
	OpenPanel() string
	Status() render.Status
	MapOptions() scene.MapOptions

	// Wait blocks until in-flight renders finish.
	Wait()

	// Close tears the map down and drops pending work. Afterwards the
	// methods that return an error fail with ErrClosed and the others do
	// nothing.
	Close() error

	OnMarkerAdded(MarkerAddedHook)
	OnMarkerRemoved(MarkerRemovedHook)
	OnLineAdded(LineAddedHook)
	OnLineRemoved(LineRemovedHook)
	OnCameraMoved(CameraMovedHook)
	OnPanelChanged(PanelChangedHook)
	OnSelectionChanged(SelectionChangedHook)
	OnSearchChanged(SearchChangedHook)
}

// explorer is the implementation of Explorer.
type explorer struct {
	*hooks

	config   *config
	logger   *zerolog.Logger
	store    *selection.Store
	searcher *search.Searcher
	renderer *render.Renderer

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates an explorer session.
func New(opts ...Option) (Explorer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if cfg.logger == nil {
		cfg.logger = logging.Default()
	}
	if cfg.backend == nil {
		cfg.backend = memory.New()
	}
	if cfg.client == nil {
		clientOpts := []cognet.Option{
			cognet.WithBaseURL(cfg.baseURL),
			cognet.WithHTTPClient(cfg.httpClient),
			cognet.WithRateLimit(cfg.rateLimit, cfg.burst),
			cognet.WithLogger(cfg.logger),
		}
		if cfg.userAgent != "" {
			clientOpts = append(clientOpts, cognet.WithUserAgent(cfg.userAgent))
		}
		cfg.client = cognet.NewClient(clientOpts...)
	}

	ex := &explorer{
		hooks:  newHooks(),
		config: cfg,
		logger: cfg.logger,
		store:  selection.New(),
	}
	ex.searcher = search.New(cfg.client, ex.store,
		search.WithDebounce(cfg.debounce),
		search.WithMinPrefix(cfg.minPrefix),
		search.WithCacheTTL(cfg.cacheTTL),
		search.WithLogger(cfg.logger),
	)
	ex.renderer = render.New(cfg.backend, ex.store, cfg.client,
		render.WithLogger(cfg.logger),
		render.WithMapOptions(cfg.mapOptions),
		render.WithObserver(ex.hooks),
	)

	ex.store.Subscribe(ex.triggerSelectionChanged)
	ex.searcher.OnChange(ex.triggerSearchChanged)
	return ex, nil
}

// Start implements Explorer.
func (e *explorer) Start(ctx context.Context) error {
	if e.closed.Load() {
		return errors.ErrClosed
	}
	if err := e.renderer.Initialize(ctx); err != nil {
		return err
	}
	e.logger.Debug().Msg("Explorer started")
	return nil
}

// Input implements Explorer.
func (e *explorer) Input(text string) {
	if e.closed.Load() {
		return
	}
	e.searcher.Input(text)
}

// Search implements Explorer.
func (e *explorer) Search(ctx context.Context, text string) ([]chains.Result, error) {
	if e.closed.Load() {
		return nil, errors.ErrClosed
	}
	return e.searcher.Search(ctx, text)
}

// Pick implements Explorer.
func (e *explorer) Pick(i int) (*chains.Result, error) {
	if e.closed.Load() {
		return nil, errors.ErrClosed
	}
	return e.searcher.Pick(i)
}

// Select implements Explorer.
func (e *explorer) Select(r *chains.Result) error {
	if e.closed.Load() {
		return errors.ErrClosed
	}
	if err := r.Validate(); err != nil {
		return err
	}
	e.store.SetSelected(r)
	return nil
}

// ClearSelection implements Explorer.
func (e *explorer) ClearSelection() {
	if e.closed.Load() {
		return
	}
	e.store.Clear()
}

// ClearSearch implements Explorer.
func (e *explorer) ClearSearch() {
	if e.closed.Load() {
		return
	}
	e.searcher.Clear()
}

// DismissSearch implements Explorer.
func (e *explorer) DismissSearch() {
	if e.closed.Load() {
		return
	}
	e.searcher.Dismiss()
}

// ToggleAllChains implements Explorer.
func (e *explorer) ToggleAllChains() bool {
	if e.closed.Load() {
		return e.store.ShowAllChains()
	}
	return e.store.ToggleShowAllChains()
}

// SetShowAllChains implements Explorer.
func (e *explorer) SetShowAllChains(v bool) {
	if e.closed.Load() {
		return
	}
	e.store.SetShowAllChains(v)
}

// ClickMarker implements Explorer.
func (e *explorer) ClickMarker(id string) (string, error) {
	if e.closed.Load() {
		return "", errors.ErrClosed
	}
	return e.renderer.ClickMarker(id)
}

// ClickMap implements Explorer.
func (e *explorer) ClickMap() {
	if e.closed.Load() {
		return
	}
	e.renderer.ClickMap()
}

// Recenter implements Explorer.
func (e *explorer) Recenter() error {
	if e.closed.Load() {
		return errors.ErrClosed
	}
	return e.renderer.Recenter()
}

// Selection implements Explorer.
func (e *explorer) Selection() selection.State {
	return e.store.Snapshot()
}

// SearchState implements Explorer.
func (e *explorer) SearchState() search.Snapshot {
	return e.searcher.Snapshot()
}

// Scene implements Explorer.
func (e *explorer) Scene() scene.Graph {
	return e.renderer.Drawn()
}

// OpenPanel implements Explorer.
func (e *explorer) OpenPanel() string {
	return e.renderer.OpenPanel()
}

// Status implements Explorer.
func (e *explorer) Status() render.Status {
	return e.renderer.Status()
}

// MapOptions implements Explorer.
func (e *explorer) MapOptions() scene.MapOptions {
	return e.config.mapOptions
}

// Wait implements Explorer.
func (e *explorer) Wait() {
	e.renderer.Wait()
}

// Close implements Explorer.
func (e *explorer) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.searcher.Close()
		if err := e.renderer.Teardown(); err != nil {
			e.closeErr = errors.WrapResource("close", "map", "", err)
		}
		e.logger.Debug().Msg("Explorer closed")
	})
	return e.closeErr
}
