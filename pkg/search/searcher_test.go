package search_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/pkg/search"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/selection"
)

type fakeFetcher struct {
	mu       sync.Mutex
	prefixes []string
	results  map[string][]chains.Result
	err      error
	block    map[string]chan struct{}
}

func (f *fakeFetcher) Suggestions(_ context.Context, prefix string) ([]chains.Result, error) {
	f.mu.Lock()
	f.prefixes = append(f.prefixes, prefix)
	gate := f.block[prefix]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[prefix], f.err
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prefixes...)
}

func lampResults() []chains.Result {
	return []chains.Result{
		{Word: "lamp", ConceptID: "1", LanguageInfo: chains.LanguageInfo{Code: "en", Name: "English"}},
		{Word: "Lampe", ConceptID: "1", LanguageInfo: chains.LanguageInfo{Code: "de", Name: "German"}},
	}
}

func newSearcher(f search.SuggestionFetcher, opts ...search.Option) (*search.Searcher, *selection.Store) {
	store := selection.New()
	opts = append([]search.Option{search.WithLogger(&logging.Nop)}, opts...)
	return search.New(f, store, opts...), store
}

func TestInputDebounces(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"lamp": lampResults()}}
	s, _ := newSearcher(f, search.WithDebounce(30*time.Millisecond))

	s.Input("l")
	s.Input("la")
	s.Input("lam")
	s.Input("lamp")

	require.Eventually(t, func() bool { return s.Snapshot().State == search.StateResults }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"lamp"}, f.calls(), "only the last input is looked up")
	assert.Len(t, s.Snapshot().Results, 2)
}

func TestShortInputNeverFetches(t *testing.T) {
	f := &fakeFetcher{}
	s, _ := newSearcher(f)

	for _, in := range []string{"", "a", " a ", "   "} {
		_, err := s.Search(context.Background(), in)
		assert.True(t, errors.IsValidationError(err), "input %q", in)
		assert.Equal(t, search.StateClosed, s.Snapshot().State)
	}
	assert.Empty(t, f.calls())
	assert.Equal(t, search.MessageHint, s.Snapshot().Message)
}

func TestSearchStates(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"la": lampResults()}}
	s, _ := newSearcher(f)

	var mu sync.Mutex
	var states []search.State
	s.OnChange(func(snap search.Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	})

	results, err := s.Search(context.Background(), "la")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = s.Search(context.Background(), "qx")
	require.NoError(t, err)
	assert.Equal(t, search.StateEmpty, s.Snapshot().State)
	assert.Equal(t, search.MessageNoResults, s.Snapshot().Message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []search.State{
		search.StateLoading, search.StateResults,
		search.StateLoading, search.StateEmpty,
	}, states)
}

func TestSearchFailureShowsNoResults(t *testing.T) {
	f := &fakeFetcher{err: errors.NewAPIError("/search/suggestions", 500, "boom")}
	s, _ := newSearcher(f)

	_, err := s.Search(context.Background(), "lamp")
	require.Error(t, err)
	assert.Equal(t, search.StateEmpty, s.Snapshot().State)
	assert.Empty(t, s.Snapshot().Results)
}

func TestSearchUsesCache(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"la": lampResults()}}
	s, _ := newSearcher(f)

	_, err := s.Search(context.Background(), "la")
	require.NoError(t, err)
	_, err = s.Search(context.Background(), " la ")
	require.NoError(t, err)

	assert.Equal(t, []string{"la"}, f.calls())
	assert.Equal(t, uint64(1), s.CacheStats().Hits)
}

func TestSearchWithoutCache(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"la": lampResults()}}
	s, _ := newSearcher(f, search.WithCacheTTL(0))

	_, _ = s.Search(context.Background(), "la")
	_, _ = s.Search(context.Background(), "la")
	assert.Len(t, f.calls(), 2)
}

func TestPickSelectsAndResets(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"la": lampResults()}}
	s, store := newSearcher(f)

	_, err := s.Search(context.Background(), "la")
	require.NoError(t, err)

	picked, err := s.Pick(1)
	require.NoError(t, err)
	assert.Equal(t, "Lampe", picked.Word)
	assert.Equal(t, "Lampe", store.Selected().Word)

	snap := s.Snapshot()
	assert.Equal(t, search.StateClosed, snap.State)
	assert.Empty(t, snap.Term)
	assert.Empty(t, snap.Results)

	_, err = s.Pick(0)
	assert.True(t, errors.IsValidationError(err))
}

func TestStaleSuggestionsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	f := &fakeFetcher{
		results: map[string][]chains.Result{"la": lampResults(), "no": {{Word: "noche"}}},
		block:   map[string]chan struct{}{"la": slow},
	}
	s, _ := newSearcher(f, search.WithCacheTTL(0))

	done := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "la")
		done <- err
	}()
	require.Eventually(t, func() bool { return len(f.calls()) == 1 }, time.Second, 5*time.Millisecond)

	_, err := s.Search(context.Background(), "no")
	require.NoError(t, err)

	close(slow)
	assert.True(t, errors.IsStale(<-done))

	snap := s.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "noche", snap.Results[0].Word)
}

func TestClearAndDismiss(t *testing.T) {
	f := &fakeFetcher{results: map[string][]chains.Result{"la": lampResults()}}
	s, _ := newSearcher(f)

	_, err := s.Search(context.Background(), "la")
	require.NoError(t, err)

	s.Dismiss()
	snap := s.Snapshot()
	assert.False(t, snap.State.Open())
	assert.Equal(t, "la", snap.Term)

	s.Clear()
	assert.Empty(t, s.Snapshot().Term)
}

func TestDebouncerCancel(t *testing.T) {
	d := search.NewDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	d.Debounce(func() { fired <- struct{}{} })
	d.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled call fired")
	case <-time.After(60 * time.Millisecond):
	}
}
