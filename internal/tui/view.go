package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentstation/cognates/internal/globe"
	"github.com/agentstation/cognates/pkg/search"
)

const welcomeText = `Cognates are words in different languages that share an origin, like Lamba and Lamp, Noche and Night, or Schule and School.

Search for a word to see how it travelled between languages. Each chain is drawn in its own colour.`

const attribution = "Data: CogNet (Batsuren et al., 2019, 2021)."

// View implements tea.Model.
func (m Model) View() string {
	if m.welcome {
		box := welcomeStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Cognates around the world"),
			"",
			welcomeText,
			"",
			dimStyle.Render(attribution),
			"",
			dimStyle.Render("Press any key to start exploring."),
		))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	header := m.headerView()
	footer := m.footerView()
	_, w, h := m.mapArea()
	body := strings.Join(m.renderMap(w, h).Lines, "\n")
	if panel := m.panelView(); panel != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// mapArea returns the first row of the map and its size in cells.
func (m Model) mapArea() (top, width, height int) {
	top = lipgloss.Height(m.headerView())
	height = max(m.height-top-lipgloss.Height(m.footerView()), 1)
	width = max(m.width-lipgloss.Width(m.panelView()), 1)
	return top, width, height
}

func (m Model) renderMap(w, h int) globe.Frame {
	focus := m.panel
	if _, ok := m.graph.Marker(m.focus); ok {
		focus = m.focus
	}
	return globe.Render(m.graph, m.view, globe.Options{
		Width:   w,
		Height:  h,
		MinZoom: m.opts.MinZoom,
		Focus:   focus,
		Plain:   m.plain,
	})
}

func (m Model) headerView() string {
	box := boxStyle
	if m.focus == "" {
		box = focusBoxStyle
	}
	input := box.Render(m.input.View())

	check := "[ ]"
	if m.sel.ShowAllChains {
		check = "[x]"
	}
	parts := []string{titleStyle.Render("Cognates"), "  ", input, "  ", itemStyle.Render(check + " Show all chains")}

	if r := m.sel.Selected; r != nil {
		style := labelStyle
		if m.focus == focusLabel {
			style = focusStyle
		}
		parts = append(parts, "  ", style.Render(r.Label()), dimStyle.Render(" ✕"))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Center, parts...)

	if dd := m.dropdownView(); dd != "" {
		indent := lipgloss.Width(titleStyle.Render("Cognates")) + 2
		return lipgloss.JoinVertical(lipgloss.Left, top,
			lipgloss.NewStyle().MarginLeft(indent).Render(dd))
	}
	return top
}

func (m Model) dropdownView() string {
	switch m.search.State {
	case search.StateLoading:
		return boxStyle.Render(dimStyle.Render(message(m.search, search.MessageSearching)))
	case search.StateEmpty:
		return boxStyle.Render(dimStyle.Render(message(m.search, search.MessageNoResults)))
	case search.StateResults:
	default:
		return ""
	}

	results := m.search.Results
	start := max(0, m.cursor-dropdownRows+1)
	end := min(len(results), start+dropdownRows)
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := results[i].Label()
		if i == m.cursor && m.focus == "" {
			rows = append(rows, cursorStyle.Render("› "+label))
			continue
		}
		rows = append(rows, itemStyle.Render("  "+label))
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}

func message(s search.Snapshot, fallback string) string {
	if s.Message != "" {
		return s.Message
	}
	return fallback
}

func (m Model) panelView() string {
	if m.panel == "" {
		return ""
	}
	mk, ok := m.graph.Marker(m.panel)
	if !ok {
		return ""
	}
	return boxStyle.BorderForeground(lipgloss.Color(mk.Color)).Render(mk.Details())
}

func (m Model) footerView() string {
	mode := "word chains"
	if m.sel.ShowAllChains {
		mode = "all chains"
	}
	status := fmt.Sprintf("%s · zoom %.1f · %d markers · %d lines",
		mode, m.view.Zoom, len(m.graph.Markers), len(m.graph.Lines))
	if m.status.Pending {
		status += " · " + m.spinner.View() + " Loading chains…"
	}
	return lipgloss.JoinVertical(lipgloss.Left, dimStyle.Render(status), m.help.View(m.keys))
}
