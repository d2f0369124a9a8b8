package globe

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cognates/pkg/scene"
)

func TestProjectCenterAndAntipode(t *testing.T) {
	v := View{Center: scene.LngLat{Lon: 25, Lat: 52}, Zoom: 2.5}
	pr := newProjector(v, 200, 160, 2.5)

	x, y, ok := pr.project(v.Center)
	require.True(t, ok)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 80, y, 1e-9)

	_, _, ok = pr.project(scene.LngLat{Lon: -155, Lat: -52})
	assert.False(t, ok, "antipode is behind the globe")

	// North of the center is drawn above it.
	_, yn, ok := pr.project(scene.LngLat{Lon: 25, Lat: 60})
	require.True(t, ok)
	assert.Less(t, yn, y)

	// East of the center is drawn to its right.
	xe, _, ok := pr.project(scene.LngLat{Lon: 35, Lat: 52})
	require.True(t, ok)
	assert.Greater(t, xe, x)
}

func TestProjectZoomDoublesRadius(t *testing.T) {
	v := View{Center: scene.LngLat{}, Zoom: 2.5}
	a := newProjector(v, 100, 100, 2.5)
	v.Zoom = 3.5
	b := newProjector(v, 100, 100, 2.5)
	assert.InDelta(t, 2*a.radius, b.radius, 1e-9)
}

func TestGreatCircle(t *testing.T) {
	a := scene.LngLat{Lon: -0.12, Lat: 51.5}
	b := scene.LngLat{Lon: 23.72, Lat: 37.98}
	pts := greatCircle(a, b, arcStepDeg)

	require.GreaterOrEqual(t, len(pts), minArcSegments+1)
	assert.InDelta(t, a.Lon, pts[0].Lon, 1e-6)
	assert.InDelta(t, a.Lat, pts[0].Lat, 1e-6)
	last := pts[len(pts)-1]
	assert.InDelta(t, b.Lon, last.Lon, 1e-6)
	assert.InDelta(t, b.Lat, last.Lat, 1e-6)

	// Same point: just both ends.
	assert.Len(t, greatCircle(a, a, arcStepDeg), 2)
}

func TestViewPan(t *testing.T) {
	v := View{Center: scene.LngLat{Lon: 170, Lat: 85}}
	v = v.Pan(20, 10)
	assert.InDelta(t, -170, v.Center.Lon, 1e-9)
	assert.InDelta(t, 89, v.Center.Lat, 1e-9)
}

func testGraph() scene.Graph {
	return scene.Graph{
		Markers: []scene.Marker{
			{ID: "marker-0-0", Position: scene.LngLat{Lon: -0.12, Lat: 51.5}, Color: "#FF6B6B"},
			{ID: "marker-0-1", Position: scene.LngLat{Lon: 13.4, Lat: 52.5}, Color: "#FF6B6B"},
			{ID: "marker-1-0", Position: scene.LngLat{Lon: -155, Lat: -52}, Color: "#4ECDC4"},
		},
		Lines: []scene.Line{
			{ID: "line-0-0", From: scene.LngLat{Lon: -0.12, Lat: 51.5}, To: scene.LngLat{Lon: 13.4, Lat: 52.5}, Color: "#FF6B6B"},
		},
	}
}

func TestRender(t *testing.T) {
	v := View{Center: scene.LngLat{Lon: 25, Lat: 52}, Zoom: 3.3}
	f := Render(testGraph(), v, Options{Width: 60, Height: 20, MinZoom: 2.5, Focus: "marker-0-1", Plain: true})

	require.Len(t, f.Lines, 20)
	for _, l := range f.Lines {
		assert.Equal(t, 60, len([]rune(l)))
	}

	require.Contains(t, f.Markers, "marker-0-0")
	require.Contains(t, f.Markers, "marker-0-1")
	assert.NotContains(t, f.Markers, "marker-1-0", "hidden behind the globe")

	p := f.Markers["marker-0-0"]
	assert.Equal(t, MarkerGlyph, []rune(f.Lines[p.Y])[p.X])
	q := f.Markers["marker-0-1"]
	assert.Equal(t, FocusedGlyph, []rune(f.Lines[q.Y])[q.X])

	braille := 0
	for _, l := range f.Lines {
		for _, r := range l {
			if r > 0x2800 && r <= 0x28FF {
				braille++
			}
		}
	}
	assert.Positive(t, braille)
}

func TestRenderEmpty(t *testing.T) {
	f := Render(scene.Graph{}, View{}, Options{})
	assert.Empty(t, f.Lines)
	assert.Empty(t, f.Markers)
}

func TestRenderStyled(t *testing.T) {
	v := View{Center: scene.LngLat{Lon: 25, Lat: 52}, Zoom: 3.3}
	f := Render(testGraph(), v, Options{Width: 40, Height: 12, MinZoom: 2.5})
	joined := strings.Join(f.Lines, "\n")
	assert.Contains(t, joined, string(MarkerGlyph))
}

func TestFrameMarkerAt(t *testing.T) {
	f := Frame{Markers: map[string]Point{
		"marker-0-0": {X: 10, Y: 5},
		"marker-0-1": {X: 12, Y: 5},
	}}

	id, ok := f.MarkerAt(Point{X: 10, Y: 5})
	require.True(t, ok)
	assert.Equal(t, "marker-0-0", id)

	id, ok = f.MarkerAt(Point{X: 11, Y: 6})
	require.True(t, ok)
	assert.Equal(t, "marker-0-0", id, "tie goes to the lowest id")

	_, ok = f.MarkerAt(Point{X: 30, Y: 30})
	assert.False(t, ok)
}

func TestFlight(t *testing.T) {
	from := View{Center: scene.LngLat{Lon: 170, Lat: 0}, Zoom: 2.5}
	cam := scene.Camera{Center: scene.LngLat{Lon: -170, Lat: 20}, Zoom: 3.3, Animate: true}
	fl := NewFlight(from, cam)

	var steps int
	for {
		v, done := fl.Step()
		steps++
		if done {
			assert.Equal(t, ViewFor(cam), v)
			break
		}
		// Shortest way round crosses the antimeridian.
		assert.True(t, v.Center.Lon >= 170 || v.Center.Lon <= -170, "lon %v", v.Center.Lon)
		require.Less(t, steps, 100)
	}
	assert.Equal(t, FlightFrames, steps)

	jump := NewFlight(from, scene.Camera{Center: cam.Center, Zoom: 3})
	v, done := jump.Step()
	assert.True(t, done)
	assert.Equal(t, 3.0, v.Zoom)
}

func TestEaseInOut(t *testing.T) {
	assert.InDelta(t, 0, easeInOut(0), 1e-9)
	assert.InDelta(t, 0.5, easeInOut(0.5), 1e-9)
	assert.InDelta(t, 1, easeInOut(1), 1e-9)
	assert.False(t, math.IsNaN(easeInOut(0.3)))
}

func TestBackendNotifies(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Open(context.Background(), scene.DefaultMapOptions()))
	waitChange(t, b)

	require.NoError(t, b.AddMarker(scene.Marker{ID: "marker-0-0", Class: "marker"}))
	require.NoError(t, b.AddLine(scene.Line{ID: "line-0-0"}))
	// Signals coalesce into one.
	waitChange(t, b)
	select {
	case <-b.Changes():
		t.Fatal("expected coalesced signal")
	default:
	}

	before := b.Flights()
	require.NoError(t, b.FlyTo(scene.Camera{Zoom: 3}))
	assert.Equal(t, before+1, b.Flights())
	waitChange(t, b)

	// Failed calls do not signal.
	assert.Error(t, b.RemoveMarker("missing"))
	select {
	case <-b.Changes():
		t.Fatal("unexpected signal")
	default:
	}

	assert.Len(t, b.Graph().Markers, 1)
	assert.Empty(t, b.Ops(), "globe backend keeps no op log")
}

func waitChange(t *testing.T, b *Backend) {
	t.Helper()
	select {
	case <-b.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal")
	}
}
