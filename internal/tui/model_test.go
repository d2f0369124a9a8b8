package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/internal/globe"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/logging"
	"github.com/agentstation/cognates/pkg/search"
)

var (
	lamp = chains.Result{
		Word: "lamp", ConceptID: "31",
		LanguageInfo: chains.LanguageInfo{Code: "en", Name: "English", Coordinates: chains.Coordinates{51.5, -0.12}},
	}
	lampe = chains.Result{
		Word: "Lampe", ConceptID: "31",
		LanguageInfo: chains.LanguageInfo{Code: "de", Name: "German", Coordinates: chains.Coordinates{52.5, 13.4}},
	}
)

type fakeClient struct{}

func (fakeClient) Suggestions(_ context.Context, _ string) ([]chains.Result, error) {
	return []chains.Result{lamp, lampe}, nil
}

func (fakeClient) Chains(_ context.Context, _ chains.Query) (*chains.ChainSet, error) {
	node := func(word, code string, lat, lon float64) chains.Node {
		return chains.Node{Word: word, LanguageInfo: chains.LanguageInfo{Code: code, Name: code, Coordinates: chains.Coordinates{lat, lon}}}
	}
	return &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{
		node("lamp", "en", 51.5, -0.12),
		node("Lampe", "de", 52.5, 13.4),
		node("lampa", "pl", 52.2, 21.0),
	}}}}, nil
}

func newTestModel(t *testing.T, opts ...Option) (Model, cognates.Explorer) {
	t.Helper()
	backend := globe.NewBackend()
	ex, err := cognates.New(
		cognates.WithClient(fakeClient{}),
		cognates.WithBackend(backend),
		cognates.WithDebounce(20*time.Millisecond),
		cognates.WithLogger(&logging.Nop),
	)
	require.NoError(t, err)
	require.NoError(t, ex.Start(context.Background()))
	t.Cleanup(func() { _ = ex.Close() })

	opts = append([]Option{WithoutWelcome(), WithPlain()}, opts...)
	m := New(ex, backend, opts...)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ex
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, k tea.KeyType) Model {
	return update(m, tea.KeyMsg{Type: k})
}

// landFlight steps any running flight to its end.
func landFlight(m Model) Model {
	for i := 0; i <= globe.FlightFrames && m.flight != nil; i++ {
		m = update(m, flightMsg{})
	}
	return m
}

// selectLamp types a prefix, picks the first suggestion and waits for
// its chains to be drawn.
func selectLamp(t *testing.T, m Model, ex cognates.Explorer) Model {
	t.Helper()
	m = typeText(m, "lam")
	require.Eventually(t, func() bool {
		return ex.SearchState().State == search.StateResults
	}, time.Second, 5*time.Millisecond)
	m = update(m, changedMsg{})
	require.True(t, m.dropdownActive())

	m = press(m, tea.KeyEnter)
	ex.Wait()
	m = update(m, changedMsg{})
	return m
}

func TestWelcomeDismissedByAnyKey(t *testing.T) {
	m, _ := newTestModel(t, func(m *Model) { m.welcome = true })
	assert.Contains(t, m.View(), "Cognates around the world")

	m = typeText(m, "x")
	assert.False(t, m.welcome)
	assert.Empty(t, m.input.Value(), "the dismissing key is not typed")
	assert.NotContains(t, m.View(), "Cognates around the world")
}

func TestTypePickDraw(t *testing.T) {
	m, ex := newTestModel(t)

	m = typeText(m, "lam")
	assert.Equal(t, "lam", m.input.Value())
	require.Eventually(t, func() bool {
		return ex.SearchState().State == search.StateResults
	}, time.Second, 5*time.Millisecond)
	m = update(m, changedMsg{})
	assert.Contains(t, m.View(), "lamp (English)")
	assert.Contains(t, m.View(), "Lampe (German)")

	m = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor)
	m = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.cursor, "cursor stops at the last suggestion")
	m = press(m, tea.KeyUp)
	assert.Equal(t, 0, m.cursor)

	m = press(m, tea.KeyEnter)
	ex.Wait()
	m = update(m, changedMsg{})

	assert.Empty(t, m.input.Value())
	assert.False(t, m.search.State.Open())
	require.NotNil(t, m.sel.Selected)
	assert.Equal(t, "lamp", m.sel.Selected.Word)
	assert.Len(t, m.graph.Markers, 3)
	assert.Len(t, m.graph.Lines, 2)
	require.NotNil(t, m.flight, "the camera move starts a flight")

	m = landFlight(m)
	assert.Nil(t, m.flight)
	assert.InDelta(t, 61.5, m.view.Center.Lat, 1e-9)
	assert.InDelta(t, -0.12, m.view.Center.Lon, 1e-9)
	assert.Contains(t, m.View(), "3 markers · 2 lines")
}

func TestFocusCycleAndPanel(t *testing.T) {
	m, ex := newTestModel(t)
	m = landFlight(selectLamp(t, m, ex))

	m = press(m, tea.KeyTab)
	assert.Equal(t, focusLabel, m.focus)
	m = press(m, tea.KeyTab)
	assert.Equal(t, "marker-0-0", m.focus)

	m = press(m, tea.KeyEnter)
	assert.Equal(t, "marker-0-0", m.panel)
	assert.Contains(t, m.panelView(), "lamp")
	assert.Contains(t, m.panelView(), "en")

	m = press(m, tea.KeyEsc)
	assert.Empty(t, m.panel, "esc on the map closes the panel")

	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, focusLabel, m.focus)
	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, "", m.focus)
	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, "marker-0-2", m.focus, "focus wraps to the last marker")
}

func TestPanAndZoom(t *testing.T) {
	m, ex := newTestModel(t)

	m = typeText(m, "+")
	assert.Equal(t, "+", m.input.Value(), "keys go to the input while it has focus")
	m = press(m, tea.KeyBackspace)

	m = landFlight(selectLamp(t, m, ex))
	m = press(m, tea.KeyTab)
	require.Equal(t, focusLabel, m.focus)

	lon := m.view.Center.Lon
	m = press(m, tea.KeyRight)
	assert.Greater(t, m.view.Center.Lon, lon)

	for range 20 {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	}
	assert.Equal(t, m.opts.MaxZoom, m.view.Zoom)
	for range 20 {
		m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	}
	assert.Equal(t, m.opts.MinZoom, m.view.Zoom)
}

func TestToggleAllChainsAndClear(t *testing.T) {
	m, ex := newTestModel(t)
	m = landFlight(selectLamp(t, m, ex))

	m = press(m, tea.KeyCtrlA)
	assert.True(t, m.sel.ShowAllChains)
	assert.Contains(t, m.View(), "[x] Show all chains")
	ex.Wait()

	m = press(m, tea.KeyTab)
	m = press(m, tea.KeyTab)
	require.Equal(t, "marker-0-0", m.focus)

	m = press(m, tea.KeyCtrlX)
	ex.Wait()
	m = update(m, changedMsg{})
	assert.Nil(t, m.sel.Selected)
	assert.Empty(t, m.graph.Markers)
	assert.Equal(t, "", m.focus, "focus falls back to the input")
}

func TestMouseClicks(t *testing.T) {
	m, ex := newTestModel(t)
	m = landFlight(selectLamp(t, m, ex))

	top, w, h := m.mapArea()
	f := m.renderMap(w, h)
	p, ok := f.Markers["marker-0-0"]
	require.True(t, ok)

	click := func(m Model, x, y int) Model {
		return update(m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	}

	m = click(m, p.X, p.Y+top)
	assert.Equal(t, "marker-0-0", m.panel)
	assert.Equal(t, "marker-0-0", m.focus)

	m = click(m, 0, top)
	assert.Empty(t, m.panel)

	zoom := m.view.Zoom
	m = update(m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, zoom+zoomStep, m.view.Zoom)
}

func TestPendingStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m.status.Pending = true
	assert.Contains(t, m.View(), "Loading chains…")
}
