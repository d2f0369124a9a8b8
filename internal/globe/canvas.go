package globe

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Draw layers. A higher layer takes a cell's colour from a lower one.
const (
	layerGrid = iota
	layerHorizon
	layerLine
	layerMarker
)

type cell struct {
	mask  uint8
	glyph rune
	color string
	layer int
	bold  bool
}

// canvas is a braille grid: each cell holds 2×4 micro pixels.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	cells := make([][]cell, h)
	for i := range cells {
		cells[i] = make([]cell, w)
	}
	return &canvas{w: w, h: h, cells: cells}
}

// microSize returns the canvas size in micro pixels.
func (c *canvas) microSize() (int, int) {
	return c.w * 2, c.h * 4
}

// braille dot bits indexed by [column][row] within a cell.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *canvas) setPixel(mx, my int, color string, layer int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= c.w || cy >= c.h {
		return
	}
	cl := &c.cells[cy][cx]
	cl.mask |= dotBits[mx%2][my%4]
	if cl.glyph == 0 && layer >= cl.layer {
		cl.color = color
		cl.layer = layer
	}
}

// line draws from (x0,y0) to (x1,y1) in micro pixels with Bresenham.
func (c *canvas) line(x0, y0, x1, y1 int, color string, layer int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	e := dx + dy
	for {
		c.setPixel(x0, y0, color, layer)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// glyph replaces a whole cell with r.
func (c *canvas) glyph(cx, cy int, r rune, color string, bold bool) bool {
	if cx < 0 || cy < 0 || cx >= c.w || cy >= c.h {
		return false
	}
	c.cells[cy][cx] = cell{glyph: r, color: color, layer: layerMarker, bold: bold}
	return true
}

func (cl cell) char() rune {
	switch {
	case cl.glyph != 0:
		return cl.glyph
	case cl.mask != 0:
		return rune(0x2800 + int(cl.mask))
	default:
		return ' '
	}
}

// lines returns the canvas rows. Styled rows colour runs of cells that
// share a style with lipgloss.
func (c *canvas) lines(styled bool) []string {
	out := make([]string, c.h)
	for y, row := range c.cells {
		var b strings.Builder
		if !styled {
			for _, cl := range row {
				b.WriteRune(cl.char())
			}
			out[y] = b.String()
			continue
		}

		var run strings.Builder
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur.color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().
					Foreground(lipgloss.Color(cur.color)).
					Bold(cur.bold).
					Render(run.String()))
			}
			run.Reset()
		}
		for x, cl := range row {
			if cl.char() == ' ' {
				cl.color, cl.bold = "", false
			}
			if x > 0 && (cl.color != cur.color || cl.bold != cur.bold) {
				flush()
			}
			cur = cl
			run.WriteRune(cl.char())
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
