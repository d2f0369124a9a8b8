package scene

import (
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
)

// Graph is everything drawn for one chain set.
type Graph struct {
	Markers []Marker `json:"markers" yaml:"markers"`
	Lines   []Line   `json:"lines" yaml:"lines"`
	Camera  *Camera  `json:"camera,omitempty" yaml:"camera,omitempty"`
}

// Empty reports whether nothing would be drawn.
func (g Graph) Empty() bool {
	return len(g.Markers) == 0 && len(g.Lines) == 0
}

// Marker returns the marker with id.
func (g Graph) Marker(id string) (Marker, bool) {
	for _, m := range g.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}

// Build lays out set. Markers and lines are ordered by chain, then node.
// When selected is non-nil the graph carries the camera move that frames it.
func Build(set *chains.ChainSet, selected *chains.Result) Graph {
	g := Graph{Markers: []Marker{}, Lines: []Line{}}
	if set != nil {
		for c, chain := range set.Chains {
			color := ColorFor(c)
			for n, node := range chain.Nodes {
				g.Markers = append(g.Markers, Marker{
					ID:              MarkerID(c, n),
					Class:           constants.MarkerClass,
					ChainIndex:      c,
					NodeIndex:       n,
					Position:        FromCoordinates(node.LanguageInfo.Coordinates),
					Color:           color,
					Word:            node.Word,
					Transliteration: node.Transliteration,
					Language:        node.LanguageInfo,
				})
				if n+1 >= len(chain.Nodes) {
					continue
				}
				next := chain.Nodes[n+1]
				g.Lines = append(g.Lines, Line{
					ID:         LineID(c, n),
					ChainIndex: c,
					NodeIndex:  n,
					From:       FromCoordinates(node.LanguageInfo.Coordinates),
					To:         FromCoordinates(next.LanguageInfo.Coordinates),
					Color:      color,
					Width:      constants.LineWidth,
					Opacity:    constants.LineOpacity,
					Join:       constants.LineJoin,
					Cap:        constants.LineCap,
				})
			}
		}
	}
	if selected != nil {
		cam := CameraFor(selected)
		g.Camera = &cam
	}
	return g
}
