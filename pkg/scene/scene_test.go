package scene_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/scene"
)

func node(word string, lat, lon float64) chains.Node {
	return chains.Node{Word: word, LanguageInfo: chains.LanguageInfo{Code: word[:2], Name: word, Coordinates: chains.Coordinates{lat, lon}}}
}

func TestColorFor(t *testing.T) {
	for i := 0; i < 30; i++ {
		assert.Equal(t, scene.Palette[i%12], scene.ColorFor(i), "chain %d", i)
	}
	assert.Equal(t, "#FF6B6B", scene.ColorFor(0))
	assert.Equal(t, "#1ABC9C", scene.ColorFor(11))
	assert.Equal(t, "#FF6B6B", scene.ColorFor(12))
	assert.Len(t, scene.Palette, 12)
}

func TestLineIDDeterministicAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for c := 0; c < 15; c++ {
		for n := 0; n < 15; n++ {
			id := scene.LineID(c, n)
			assert.Equal(t, fmt.Sprintf("line-%d-%d", c, n), id)
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
			assert.True(t, scene.IsLineID(id))
		}
	}
	assert.Equal(t, "marker-3-4", scene.MarkerID(3, 4))
	assert.False(t, scene.IsLineID("marker-0-0"))
}

func TestBuildThreeNodeChain(t *testing.T) {
	set := &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{
		node("aa", 10, 20),
		node("bb", 30, 40),
		node("cc", 50, 60),
	}}}}

	g := scene.Build(set, nil)
	require.Len(t, g.Markers, 3)
	require.Len(t, g.Lines, 2)
	assert.Nil(t, g.Camera)

	assert.Equal(t, "line-0-0", g.Lines[0].ID)
	assert.Equal(t, scene.LngLat{Lon: 20, Lat: 10}, g.Lines[0].From)
	assert.Equal(t, scene.LngLat{Lon: 40, Lat: 30}, g.Lines[0].To)
	assert.Equal(t, "line-0-1", g.Lines[1].ID)
	assert.Equal(t, scene.LngLat{Lon: 60, Lat: 50}, g.Lines[1].To)

	for _, l := range g.Lines {
		assert.Equal(t, 2.0, l.Width)
		assert.Equal(t, 0.7, l.Opacity)
		assert.Equal(t, "round", l.Join)
		assert.Equal(t, "round", l.Cap)
	}
}

func TestBuildSwapsLatLon(t *testing.T) {
	set := &chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{node("en", 51.5, -0.12)}}}}
	g := scene.Build(set, nil)
	require.Len(t, g.Markers, 1)
	assert.Equal(t, -0.12, g.Markers[0].Position.Lon)
	assert.Equal(t, 51.5, g.Markers[0].Position.Lat)
	assert.Equal(t, "marker", g.Markers[0].Class)
	assert.Empty(t, g.Lines, "a single node has no successor")
}

func TestBuildColorsPerChain(t *testing.T) {
	set := &chains.ChainSet{}
	for i := 0; i < 13; i++ {
		set.Chains = append(set.Chains, chains.Chain{Nodes: []chains.Node{node("aa", 0, 0), node("bb", 1, 1)}})
	}
	g := scene.Build(set, nil)
	require.Len(t, g.Lines, 13)
	for _, l := range g.Lines {
		assert.Equal(t, scene.ColorFor(l.ChainIndex), l.Color)
	}
	assert.Equal(t, g.Lines[0].Color, g.Lines[12].Color)
}

func TestBuildCamera(t *testing.T) {
	sel := &chains.Result{Word: "lamp", LanguageInfo: chains.LanguageInfo{Coordinates: chains.Coordinates{51.5, -0.12}}}
	g := scene.Build(nil, sel)
	require.NotNil(t, g.Camera)
	assert.Equal(t, -0.12, g.Camera.Center.Lon)
	assert.InDelta(t, 61.5, g.Camera.Center.Lat, 1e-9)
	assert.Equal(t, 3.3, g.Camera.Zoom)
	assert.True(t, g.Camera.Animate)
	assert.True(t, g.Empty())
}

func TestDiff(t *testing.T) {
	a := scene.Build(&chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{node("aa", 1, 1), node("bb", 2, 2)}}}}, nil)
	b := scene.Build(&chains.ChainSet{Chains: []chains.Chain{{Nodes: []chains.Node{node("aa", 1, 1), node("cc", 3, 3), node("dd", 4, 4)}}}}, nil)

	cs := scene.Diff(a, b)
	assert.Equal(t, []string{"marker-0-1", "marker-0-2"}, markerIDs(cs.AddedMarkers))
	assert.Equal(t, []string{"marker-0-1"}, markerIDs(cs.RemovedMarkers))
	assert.Len(t, cs.AddedLines, 2)
	assert.Len(t, cs.RemovedLines, 1)

	assert.True(t, scene.Diff(a, a).IsEmpty())
	assert.Len(t, scene.Diff(a, scene.Graph{}).RemovedMarkers, 2)
}

func TestPanelsAtMostOneOpen(t *testing.T) {
	var p scene.Panels
	assert.Equal(t, "marker-0-0", p.Toggle("marker-0-0"))
	assert.Equal(t, "marker-0-1", p.Toggle("marker-0-1"))
	assert.Equal(t, "marker-0-1", p.Open())
	assert.Equal(t, "", p.Toggle("marker-0-1"))
	p.Toggle("marker-1-0")
	assert.Equal(t, "marker-1-0", p.CloseAll())
	assert.Equal(t, "", p.Open())
}

func TestMarkerDetails(t *testing.T) {
	m := scene.Marker{Word: "лампа", Transliteration: "lampa", Language: chains.LanguageInfo{Name: "Russian", Flag: "🇷🇺"}}
	assert.Equal(t, "лампа (lampa)\n🇷🇺 Russian", m.Details())
}

func TestDefaultMapOptions(t *testing.T) {
	o := scene.DefaultMapOptions()
	assert.Equal(t, "https://demotiles.maplibre.org/style.json", o.Style)
	assert.Equal(t, "globe", o.Projection)
	assert.Equal(t, scene.LngLat{Lon: 25, Lat: 52}, o.Center)
	assert.Equal(t, 75.0, o.Pitch)
	assert.False(t, o.DragRotate || o.Keyboard || o.TouchZoomRotate)
	assert.Equal(t, 2.5, o.ClampZoom(1))
	assert.Equal(t, 5.5, o.ClampZoom(9))
	assert.Equal(t, 4.0, o.ClampZoom(4))
}

func TestLineGeoJSON(t *testing.T) {
	l := scene.Line{From: scene.LngLat{Lon: 1, Lat: 2}, To: scene.LngLat{Lon: 3, Lat: 4}}
	f := l.GeoJSON()
	geom := f["geometry"].(map[string]any)
	assert.Equal(t, "LineString", geom["type"])
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, geom["coordinates"])
}

func markerIDs(ms []scene.Marker) []string {
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	return ids
}
