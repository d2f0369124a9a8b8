// Package tui is the terminal explorer: a search box with a suggestion
// dropdown above a braille globe that shows the selected word's chains.
package tui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/internal/globe"
	"github.com/agentstation/cognates/pkg/render"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/search"
	"github.com/agentstation/cognates/pkg/selection"
)

const (
	// focusLabel is the selected-word label. Other focus stops are the
	// search input ("") and marker ids.
	focusLabel = "label"

	panStepDeg   = 10.0
	zoomStep     = 0.5
	dropdownRows = 8

	defaultWidth  = 80
	defaultHeight = 24
)

type changedMsg struct{}

type flightMsg struct{}

// Option configures a Model.
type Option func(*Model)

// WithoutWelcome skips the welcome panel.
func WithoutWelcome() Option {
	return func(m *Model) {
		m.welcome = false
	}
}

// WithPlain draws without colours.
func WithPlain() Option {
	return func(m *Model) {
		m.plain = true
	}
}

// Model is the bubbletea model. The explorer must use backend as its map.
type Model struct {
	explorer cognates.Explorer
	backend  *globe.Backend
	opts     scene.MapOptions

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	plain   bool

	width, height int
	view          globe.View
	flight        *globe.Flight
	flying        bool
	flights       uint64
	spinning      bool

	welcome bool
	focus   string
	cursor  int

	search search.Snapshot
	sel    selection.State
	graph  scene.Graph
	panel  string
	status render.Status
}

// New creates the model for a started explorer drawing on backend.
func New(ex cognates.Explorer, backend *globe.Backend, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Search a word…"
	ti.Prompt = "🔍 "
	ti.CharLimit = 64
	ti.Width = 28
	ti.Focus()

	mapOpts := ex.MapOptions()
	m := Model{
		explorer: ex,
		backend:  backend,
		opts:     mapOpts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:    defaultWidth,
		height:   defaultHeight,
		view:     globe.View{Center: mapOpts.Center, Zoom: mapOpts.Zoom},
		flights:  backend.Flights(),
		welcome:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	// Search and selection changes do not always touch the map.
	ex.OnSearchChanged(func(search.Snapshot) { backend.Notify() })
	ex.OnSelectionChanged(func(selection.State) { backend.Notify() })

	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.backend.Changes()
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func flightTick() tea.Cmd {
	return tea.Tick(globe.FlightInterval, func(time.Time) tea.Msg {
		return flightMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.refresh(), m.waitForChange())

	case flightMsg:
		return m, m.stepFlight()

	case spinner.TickMsg:
		// Poll while a fetch is pending: a failed fetch changes nothing
		// on the map.
		cmd := m.refresh()
		if !m.status.Pending {
			m.spinning = false
			return m, cmd
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, tea.Batch(cmd, spCmd)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.refresh()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.refresh())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh re-reads the explorer and starts a flight when the map's
// camera moved.
func (m *Model) refresh() tea.Cmd {
	m.search = m.explorer.SearchState()
	m.sel = m.explorer.Selection()
	m.graph = m.backend.Graph()
	m.panel = m.explorer.OpenPanel()
	m.status = m.explorer.Status()

	if m.search.State != search.StateResults || m.cursor >= len(m.search.Results) {
		m.cursor = 0
	}
	if !m.canFocus(m.focus) {
		m.setFocus("")
	}

	var cmds []tea.Cmd
	if n := m.backend.Flights(); n != m.flights {
		m.flights = n
		m.flight = globe.NewFlight(m.view, m.backend.Camera())
		if !m.flying {
			m.flying = true
			cmds = append(cmds, flightTick())
		}
	}
	if m.status.Pending && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) stepFlight() tea.Cmd {
	if m.flight == nil {
		m.flying = false
		return nil
	}
	v, done := m.flight.Step()
	m.view = v
	if done {
		m.flight = nil
		m.flying = false
		return nil
	}
	return flightTick()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.welcome {
		m.welcome = false
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.AllChains):
		m.explorer.ToggleAllChains()
		return nil
	case key.Matches(msg, m.keys.Clear):
		m.explorer.ClearSelection()
		return nil
	case key.Matches(msg, m.keys.Recenter):
		_ = m.explorer.Recenter()
		return nil
	case key.Matches(msg, m.keys.Next):
		m.cycleFocus(1)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.cycleFocus(-1)
		return nil
	case key.Matches(msg, m.keys.Esc):
		if m.search.State.Open() {
			m.explorer.DismissSearch()
		} else {
			m.explorer.ClickMap()
		}
		return nil
	case key.Matches(msg, m.keys.Enter):
		m.activate()
		return nil
	}

	if m.dropdownActive() {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor = max(m.cursor-1, 0)
			return nil
		case key.Matches(msg, m.keys.Down):
			m.cursor = min(m.cursor+1, len(m.search.Results)-1)
			return nil
		}
	}

	if m.focus != "" {
		step := panStepDeg / math.Pow(2, m.view.Zoom-m.opts.MinZoom)
		switch {
		case key.Matches(msg, m.keys.Up):
			m.pan(0, step)
		case key.Matches(msg, m.keys.Down):
			m.pan(0, -step)
		case key.Matches(msg, m.keys.Left):
			m.pan(-step, 0)
		case key.Matches(msg, m.keys.Right):
			m.pan(step, 0)
		case key.Matches(msg, m.keys.ZoomIn):
			m.zoom(zoomStep)
		case key.Matches(msg, m.keys.ZoomOut):
			m.zoom(-zoomStep)
		}
		return nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.explorer.Input(v)
	}
	return cmd
}

func (m *Model) activate() {
	switch m.focus {
	case "":
		if !m.dropdownActive() {
			return
		}
		if _, err := m.explorer.Pick(m.cursor); err == nil {
			m.input.SetValue("")
			m.cursor = 0
		}
	case focusLabel:
		_ = m.explorer.Recenter()
	default:
		_, _ = m.explorer.ClickMarker(m.focus)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoom(zoomStep)
	case tea.MouseButtonWheelDown:
		m.zoom(-zoomStep)
	case tea.MouseButtonLeft:
		if m.welcome {
			m.welcome = false
			return
		}
		top, w, h := m.mapArea()
		if msg.Y < top || msg.Y >= top+h || msg.X >= w {
			return
		}
		m.explorer.DismissSearch()
		f := m.renderMap(w, h)
		if id, ok := f.MarkerAt(globe.Point{X: msg.X, Y: msg.Y - top}); ok {
			_, _ = m.explorer.ClickMarker(id)
			m.setFocus(id)
			return
		}
		m.explorer.ClickMap()
	}
}

// pan and zoom move the terminal view only; the next camera move from
// the explorer takes over again.
func (m *Model) pan(dLon, dLat float64) {
	m.flight = nil
	m.view = m.view.Pan(dLon, dLat)
}

func (m *Model) zoom(d float64) {
	m.flight = nil
	m.view.Zoom = m.opts.ClampZoom(m.view.Zoom + d)
}

func (m *Model) dropdownActive() bool {
	return m.focus == "" && m.search.State == search.StateResults && len(m.search.Results) > 0
}

// stops lists the focus stops in tab order.
func (m *Model) stops() []string {
	out := []string{""}
	if m.sel.Selected != nil {
		out = append(out, focusLabel)
	}
	for _, mk := range m.graph.Markers {
		out = append(out, mk.ID)
	}
	return out
}

func (m *Model) canFocus(f string) bool {
	switch f {
	case "":
		return true
	case focusLabel:
		return m.sel.Selected != nil
	}
	_, ok := m.graph.Marker(f)
	return ok
}

func (m *Model) cycleFocus(dir int) {
	stops := m.stops()
	i := 0
	for j, s := range stops {
		if s == m.focus {
			i = j
			break
		}
	}
	i = (i + dir + len(stops)) % len(stops)
	m.setFocus(stops[i])
}

func (m *Model) setFocus(f string) {
	m.focus = f
	if f == "" {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}
