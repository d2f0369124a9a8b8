// Package search implements the suggestion box: debounced prefix lookups,
// the dropdown state, and picking a suggestion into the selection.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/cognates/internal/cache"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/selection"
)

// Dropdown messages.
const (
	MessageSearching = "Searching..."
	MessageNoResults = "No results found"
	MessageHint      = "Type at least 2 characters to search"
)

// SuggestionFetcher looks up words by prefix.
type SuggestionFetcher interface {
	Suggestions(ctx context.Context, prefix string) ([]chains.Result, error)
}

// State is the dropdown state.
type State int

// Dropdown states.
const (
	StateClosed State = iota
	StateLoading
	StateResults
	StateEmpty
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResults:
		return "results"
	case StateEmpty:
		return "empty"
	default:
		return "closed"
	}
}

// Open reports whether the dropdown is visible.
func (s State) Open() bool { return s != StateClosed }

// Snapshot is the observable state of the search box.
type Snapshot struct {
	Term    string          `json:"term" yaml:"term"`
	State   State           `json:"-" yaml:"-"`
	Status  string          `json:"state" yaml:"state"`
	Message string          `json:"message,omitempty" yaml:"message,omitempty"`
	Results []chains.Result `json:"results" yaml:"results"`
}

// Listener observes search state changes.
type Listener func(Snapshot)

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce sets the quiet period before a lookup.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) {
		s.debouncer = NewDebouncer(d)
	}
}

// WithMinPrefix sets the shortest trimmed input that triggers a lookup.
func WithMinPrefix(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.minPrefix = n
		}
	}
}

// WithCacheTTL sets how long results for a prefix are reused. Zero
// disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Searcher) {
		s.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// Searcher drives the suggestion dropdown. It is safe for concurrent use.
type Searcher struct {
	fetcher   SuggestionFetcher
	store     *selection.Store
	debouncer *Debouncer
	cache     *cache.Cache[[]chains.Result]
	cacheTTL  time.Duration
	minPrefix int
	logger    *zerolog.Logger

	mu        sync.Mutex
	term      string
	state     State
	results   []chains.Result
	gen       uint64
	cancel    context.CancelFunc
	listeners []Listener
}

// New creates a searcher that writes picks into store.
func New(fetcher SuggestionFetcher, store *selection.Store, opts ...Option) *Searcher {
	s := &Searcher{
		fetcher:   fetcher,
		store:     store,
		debouncer: NewDebouncer(constants.SearchDebounce),
		cacheTTL:  constants.SuggestionCacheTTL,
		minPrefix: constants.MinPrefixLength,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheTTL > 0 {
		s.cache = cache.New[[]chains.Result](s.cacheTTL, constants.CacheCleanupInterval)
	}
	return s
}

// OnChange registers a listener for every state change.
func (s *Searcher) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Input records the text typed so far and schedules a lookup once typing
// pauses.
func (s *Searcher) Input(text string) {
	s.mu.Lock()
	s.term = text
	s.mu.Unlock()

	s.debouncer.Debounce(func() {
		_, _ = s.lookup(context.Background(), text)
	})
}

// Search looks up text immediately, updating the dropdown the same way a
// debounced lookup would.
func (s *Searcher) Search(ctx context.Context, text string) ([]chains.Result, error) {
	s.mu.Lock()
	s.term = text
	s.mu.Unlock()
	s.debouncer.Cancel()
	return s.lookup(ctx, text)
}

func (s *Searcher) lookup(parent context.Context, text string) ([]chains.Result, error) {
	prefix := strings.TrimSpace(text)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if len([]rune(prefix)) < s.minPrefix {
		s.results = nil
		s.state = StateClosed
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return nil, errors.NewValidationError("prefix", prefix, MessageHint)
	}

	if cached, ok := s.cacheGet(prefix); ok {
		s.setResultsLocked(cached)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return cached, nil
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.state = StateLoading
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	results, err := s.fetcher.Suggestions(ctx, prefix)
	cancel()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug().Str("prefix", prefix).Msg("Discarding suggestions for superseded input")
		return nil, errors.ErrStaleRequest
	}
	s.cancel = nil
	if err != nil {
		s.logger.Warn().Err(err).Str("prefix", prefix).Msg("Search failed")
		s.setResultsLocked(nil)
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(prefix, results)
	}
	s.setResultsLocked(results)
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return results, nil
}

func (s *Searcher) cacheGet(prefix string) ([]chains.Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(prefix)
}

func (s *Searcher) setResultsLocked(results []chains.Result) {
	s.results = results
	if len(results) == 0 {
		s.state = StateEmpty
		return
	}
	s.state = StateResults
}

// Pick selects result i of the open dropdown. The dropdown closes and the
// input is cleared.
func (s *Searcher) Pick(i int) (*chains.Result, error) {
	s.mu.Lock()
	if s.state != StateResults || i < 0 || i >= len(s.results) {
		s.mu.Unlock()
		return nil, errors.NewValidationError("index", i, "no such suggestion")
	}
	picked := s.results[i]
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.store.SetSelected(&picked)
	s.notify(snap)
	return &picked, nil
}

// Clear empties the input and closes the dropdown. Pending and in-flight
// lookups are dropped.
func (s *Searcher) Clear() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Dismiss closes the dropdown but keeps the input, like clicking outside it.
func (s *Searcher) Dismiss() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Searcher) resetLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.term = ""
	s.results = nil
	s.state = StateClosed
}

// Snapshot returns the current state.
func (s *Searcher) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CacheStats returns suggestion cache counters.
func (s *Searcher) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.GetStats()
}

// Close drops pending work.
func (s *Searcher) Close() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

func (s *Searcher) snapshotLocked() Snapshot {
	snap := Snapshot{
		Term:    s.term,
		State:   s.state,
		Status:  s.state.String(),
		Results: append([]chains.Result{}, s.results...),
	}
	switch s.state {
	case StateLoading:
		snap.Message = MessageSearching
	case StateEmpty:
		snap.Message = MessageNoResults
	case StateClosed:
		if t := strings.TrimSpace(s.term); t != "" && len([]rune(t)) < s.minPrefix {
			snap.Message = MessageHint
		}
	}
	return snap
}

func (s *Searcher) notify(snap Snapshot) {
	s.mu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l(snap)
	}
}
