package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Next      key.Binding
	Prev      key.Binding
	Enter     key.Binding
	Esc       key.Binding
	AllChains key.Binding
	Clear     key.Binding
	Recenter  key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "choose / pan")),
		Down:      key.NewBinding(key.WithKeys("down")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "pan")),
		Right:     key.NewBinding(key.WithKeys("right")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Esc:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		AllChains: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "all chains")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear")),
		Recenter:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "recenter")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Enter, k.Up, k.ZoomIn, k.AllChains, k.Clear, k.Recenter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Enter, k.Esc},
		{k.Up, k.Left, k.ZoomIn},
		{k.AllChains, k.Clear, k.Recenter, k.Quit},
	}
}
