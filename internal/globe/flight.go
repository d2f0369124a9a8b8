package globe

import (
	"time"

	"github.com/agentstation/cognates/pkg/scene"
)

// Flight animation timing.
const (
	FlightFrames   = 12
	FlightInterval = 30 * time.Millisecond
)

// Flight eases a view towards a camera target over FlightFrames steps.
type Flight struct {
	from, to View
	frame    int
	frames   int
}

// NewFlight starts a flight from the current view to cam. A camera that
// does not animate lands on the first step.
func NewFlight(from View, cam scene.Camera) *Flight {
	frames := FlightFrames
	if !cam.Animate {
		frames = 1
	}
	return &Flight{from: from, to: ViewFor(cam), frames: frames}
}

// Step advances one frame and returns the view to draw and whether the
// flight has landed.
func (f *Flight) Step() (View, bool) {
	if f.frame < f.frames {
		f.frame++
	}
	if f.frame >= f.frames {
		return f.to, true
	}
	t := easeInOut(float64(f.frame) / float64(f.frames))
	dLon := wrapLon(f.to.Center.Lon - f.from.Center.Lon)
	return View{
		Center: scene.LngLat{
			Lon: wrapLon(f.from.Center.Lon + dLon*t),
			Lat: f.from.Center.Lat + (f.to.Center.Lat-f.from.Center.Lat)*t,
		},
		Zoom: f.from.Zoom + (f.to.Zoom-f.from.Zoom)*t,
	}, false
}

// Target is where the flight lands.
func (f *Flight) Target() View {
	return f.to
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
