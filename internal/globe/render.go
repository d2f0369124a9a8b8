package globe

import (
	"math"

	"github.com/agentstation/cognates/pkg/scene"
)

// Colours of the globe itself.
const (
	GridColor    = "#243141"
	HorizonColor = "#6B7280"
)

const (
	gridStepDeg   = 30.0
	gridSampleDeg = 3.0
	arcStepDeg    = 2.0
)

// Glyphs for markers.
const (
	MarkerGlyph  = '●'
	FocusedGlyph = '◉'
)

// Options controls one rendering.
type Options struct {
	Width, Height int     // in terminal cells
	MinZoom       float64 // zoom at which the whole globe fits
	Focus         string  // marker id drawn highlighted
	Plain         bool    // no colours
}

// Point is a terminal cell.
type Point struct {
	X, Y int
}

// Frame is a rendered globe.
type Frame struct {
	Lines []string

	// Markers holds the cell of every visible marker.
	Markers map[string]Point
}

// MarkerAt returns the visible marker drawn at or next to cell p. When
// several are in reach the closest wins; ties go to the lowest id.
func (f Frame) MarkerAt(p Point) (string, bool) {
	best, bestDist := "", math.MaxInt
	for id, q := range f.Markers {
		dx, dy := abs(q.X-p.X), abs(q.Y-p.Y)
		if dx > 1 || dy > 1 {
			continue
		}
		if d := dx + dy; d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	return best, best != ""
}

// Render draws g on a globe seen from v.
func Render(g scene.Graph, v View, opts Options) Frame {
	f := Frame{Markers: make(map[string]Point)}
	if opts.Width <= 0 || opts.Height <= 0 {
		return f
	}

	c := newCanvas(opts.Width, opts.Height)
	wMic, hMic := c.microSize()
	pr := newProjector(v, wMic, hMic, opts.MinZoom)

	drawGraticule(c, pr)
	drawHorizon(c, pr)

	for _, l := range g.Lines {
		drawPath(c, pr, greatCircle(l.From, l.To, arcStepDeg), l.Color, layerLine)
	}

	// Focused marker last so it stays on top.
	for _, m := range g.Markers {
		if m.ID != opts.Focus {
			drawMarker(c, pr, &f, m, false)
		}
	}
	for _, m := range g.Markers {
		if m.ID == opts.Focus {
			drawMarker(c, pr, &f, m, true)
		}
	}

	f.Lines = c.lines(!opts.Plain)
	return f
}

func drawMarker(c *canvas, pr projector, f *Frame, m scene.Marker, focused bool) {
	x, y, ok := pr.project(m.Position)
	if !ok {
		return
	}
	cx, cy := int(x)/2, int(y)/4
	glyph := MarkerGlyph
	if focused {
		glyph = FocusedGlyph
	}
	if c.glyph(cx, cy, glyph, m.Color, focused) {
		f.Markers[m.ID] = Point{X: cx, Y: cy}
	}
}

// drawPath joins consecutive visible points. A segment with a hidden end
// is skipped so paths break at the horizon.
func drawPath(c *canvas, pr projector, pts []scene.LngLat, color string, layer int) {
	var px, py int
	prev := false
	for _, p := range pts {
		x, y, ok := pr.project(p)
		if !ok {
			prev = false
			continue
		}
		ix, iy := int(math.Round(x)), int(math.Round(y))
		if prev {
			c.line(px, py, ix, iy, color, layer)
		} else {
			c.setPixel(ix, iy, color, layer)
		}
		px, py, prev = ix, iy, true
	}
}

func drawGraticule(c *canvas, pr projector) {
	for lon := -180.0; lon < 180; lon += gridStepDeg {
		var pts []scene.LngLat
		for lat := -90.0; lat <= 90; lat += gridSampleDeg {
			pts = append(pts, scene.LngLat{Lon: lon, Lat: lat})
		}
		drawPath(c, pr, pts, GridColor, layerGrid)
	}
	for lat := -90 + gridStepDeg; lat < 90; lat += gridStepDeg {
		var pts []scene.LngLat
		for lon := -180.0; lon <= 180; lon += gridSampleDeg {
			pts = append(pts, scene.LngLat{Lon: lon, Lat: lat})
		}
		drawPath(c, pr, pts, GridColor, layerGrid)
	}
}

func drawHorizon(c *canvas, pr projector) {
	const steps = 180
	var px, py int
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		x := int(math.Round(pr.cx + pr.radius*math.Cos(a)))
		y := int(math.Round(pr.cy + pr.radius*math.Sin(a)))
		if i > 0 {
			c.line(px, py, x, y, HorizonColor, layerHorizon)
		}
		px, py = x, y
	}
}
