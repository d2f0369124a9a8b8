// Package table turns suggestions, chains and scenes into rows for the
// table and markdown output formats.
package table

import (
	"fmt"
	"strconv"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/scene"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a table ready for rendering.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ResultsToTableData converts suggestions to table format.
func ResultsToTableData(results []chains.Result, wide bool) Data {
	headers := []string{"#", "Word", "Language", "Concept"}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignRight}
	if wide {
		headers = append(headers, "Code", "Lat", "Lon")
		align = append(align, AlignLeft, AlignRight, AlignRight)
	}

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{
			strconv.Itoa(i),
			r.Word,
			languageName(r.LanguageInfo),
			r.ConceptID.String(),
		}
		if wide {
			row = append(row,
				dash(r.LanguageInfo.Code),
				FormatDegrees(r.LanguageInfo.Coordinates.Lat()),
				FormatDegrees(r.LanguageInfo.Coordinates.Lon()),
			)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// ChainsToTableData lists every node of every chain in order.
func ChainsToTableData(set *chains.ChainSet, wide bool) Data {
	headers := []string{"Chain", "Node", "Word", "Transliteration", "Language"}
	align := []Align{AlignRight, AlignRight, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Code", "Lat", "Lon", "Color")
		align = append(align, AlignLeft, AlignRight, AlignRight, AlignLeft)
	}

	var rows [][]string
	if set != nil {
		for c, chain := range set.Chains {
			for n, node := range chain.Nodes {
				row := []string{
					strconv.Itoa(c),
					strconv.Itoa(n),
					node.Word,
					dash(node.Transliteration),
					languageName(node.LanguageInfo),
				}
				if wide {
					row = append(row,
						dash(node.LanguageInfo.Code),
						FormatDegrees(node.LanguageInfo.Coordinates.Lat()),
						FormatDegrees(node.LanguageInfo.Coordinates.Lon()),
						scene.ColorFor(c),
					)
				}
				rows = append(rows, row)
			}
		}
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// SceneToTableData lists what a scene draws: markers first, then lines.
func SceneToTableData(g scene.Graph, wide bool) Data {
	headers := []string{"Kind", "ID", "Label", "Color"}
	if wide {
		headers = append(headers, "Position")
	}

	rows := make([][]string, 0, len(g.Markers)+len(g.Lines)+1)
	for _, m := range g.Markers {
		label := m.Word
		if name := languageName(m.Language); name != "-" {
			label = fmt.Sprintf("%s (%s)", m.Word, name)
		}
		row := []string{"marker", m.ID, label, m.Color}
		if wide {
			row = append(row, m.Position.String())
		}
		rows = append(rows, row)
	}
	for _, l := range g.Lines {
		row := []string{"line", l.ID, fmt.Sprintf("node %d → %d", l.NodeIndex, l.NodeIndex+1), l.Color}
		if wide {
			row = append(row, fmt.Sprintf("%s → %s", l.From, l.To))
		}
		rows = append(rows, row)
	}
	if g.Camera != nil {
		row := []string{"camera", "-", fmt.Sprintf("zoom %.1f", g.Camera.Zoom), "-"}
		if wide {
			row = append(row, g.Camera.Center.String())
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// FormatDegrees renders a coordinate with four decimals.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func languageName(l chains.LanguageInfo) string {
	switch {
	case l.Name != "" && l.Flag != "":
		return l.Flag + " " + l.Name
	case l.Name != "":
		return l.Name
	case l.Code != "":
		return l.Code
	}
	return "-"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
