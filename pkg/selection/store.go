// Package selection holds the session-scoped explorer state shared by the
// search box, the map renderer and the word label: the selected result,
// the show-all-chains flag and the map handle.
//
// A Store is created once per session and passed explicitly to every
// component that reads or writes it.
package selection

import (
	"sync"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/errors"
)

// Token identifies one state change. Tokens increase monotonically so a
// consumer can tell whether work it started is still current.
type Token uint64

// State is a snapshot delivered to subscribers.
type State struct {
	Selected      *chains.Result `json:"selected" yaml:"selected"`
	ShowAllChains bool           `json:"show_all_chains" yaml:"show_all_chains"`
	Token         Token          `json:"token" yaml:"token"`
}

// Listener observes state changes.
type Listener func(State)

// Store is safe for concurrent use. Each field has a single writer and the
// last write wins.
type Store struct {
	mu        sync.RWMutex
	selected  *chains.Result
	showAll   bool
	mapHandle any
	token     Token

	listenerMu sync.Mutex
	listeners  []*listenerEntry
}

type listenerEntry struct {
	fn Listener
}

// New creates an empty store: nothing selected, single-chain mode.
func New() *Store {
	return &Store{}
}

// Selected returns the current result, or nil.
func (s *Store) Selected() *chains.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// ShowAllChains reports whether every chain of the concept is shown.
func (s *Store) ShowAllChains() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showAll
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Selected: s.selected, ShowAllChains: s.showAll, Token: s.token}
}

// Current reports whether t is the most recent token.
func (s *Store) Current(t Token) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token == t
}

// SetSelected replaces the selection wholesale. Picking a result always
// notifies, even when it equals the current one. Clearing an already empty
// selection does not.
func (s *Store) SetSelected(r *chains.Result) {
	s.mu.Lock()
	if r == nil && s.selected == nil {
		s.mu.Unlock()
		return
	}
	if r != nil {
		cp := *r
		r = &cp
	}
	s.selected = r
	st := s.advance()
	s.mu.Unlock()

	s.notify(st)
}

// Clear removes the selection.
func (s *Store) Clear() {
	s.SetSelected(nil)
}

// SetShowAllChains sets the flag and notifies only when it changes.
func (s *Store) SetShowAllChains(v bool) {
	s.mu.Lock()
	if s.showAll == v {
		s.mu.Unlock()
		return
	}
	s.showAll = v
	st := s.advance()
	s.mu.Unlock()

	s.notify(st)
}

// ToggleShowAllChains flips the flag and returns the new value.
func (s *Store) ToggleShowAllChains() bool {
	s.mu.Lock()
	s.showAll = !s.showAll
	v := s.showAll
	st := s.advance()
	s.mu.Unlock()

	s.notify(st)
	return v
}

// SetMap records the map handle. It may be set once per map lifetime.
func (s *Store) SetMap(handle any) error {
	if handle == nil {
		return errors.NewValidationError("map", nil, "handle is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mapHandle != nil {
		return errors.ErrAlreadyExists
	}
	s.mapHandle = handle
	return nil
}

// Map returns the map handle, or nil before SetMap and after ReleaseMap.
func (s *Store) Map() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapHandle
}

// ReleaseMap forgets the map handle so a new map can be registered.
func (s *Store) ReleaseMap() {
	s.mu.Lock()
	s.mapHandle = nil
	s.mu.Unlock()
}

// Subscribe registers fn for every subsequent change. Listeners run in
// registration order on the writer's goroutine, after the store lock is
// released. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) func() {
	e := &listenerEntry{fn: fn}
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, e)
	s.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			for i, l := range s.listeners {
				if l == e {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// advance must be called with mu held.
func (s *Store) advance() State {
	s.token++
	return State{Selected: s.selected, ShowAllChains: s.showAll, Token: s.token}
}

func (s *Store) notify(st State) {
	s.listenerMu.Lock()
	ls := make([]*listenerEntry, len(s.listeners))
	copy(ls, s.listeners)
	s.listenerMu.Unlock()

	for _, l := range ls {
		l.fn(st)
	}
}
