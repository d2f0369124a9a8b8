package globe

import (
	"math"

	"github.com/agentstation/cognates/pkg/scene"
)

const deg = math.Pi / 180

// View is what the terminal globe looks at.
type View struct {
	Center scene.LngLat
	Zoom   float64
}

// ViewFor returns the view a camera asks for.
func ViewFor(cam scene.Camera) View {
	return View{Center: cam.Center, Zoom: cam.Zoom}
}

// Pan moves the view by dLon/dLat degrees, keeping latitude on the globe
// and longitude in [-180, 180).
func (v View) Pan(dLon, dLat float64) View {
	v.Center.Lon = wrapLon(v.Center.Lon + dLon)
	v.Center.Lat = math.Max(-89, math.Min(89, v.Center.Lat+dLat))
	return v
}

// projector maps positions to micro-pixel coordinates with an
// orthographic projection centred on the view.
type projector struct {
	lon0, sinLat0, cosLat0 float64
	radius                 float64
	cx, cy                 float64
}

// newProjector fits the globe to a w×h micro-pixel canvas. Each zoom
// level doubles the radius; minZoom fits the whole globe.
func newProjector(v View, w, h int, minZoom float64) projector {
	fit := 0.45 * math.Min(float64(w), float64(h))
	return projector{
		lon0:    v.Center.Lon * deg,
		sinLat0: math.Sin(v.Center.Lat * deg),
		cosLat0: math.Cos(v.Center.Lat * deg),
		radius:  fit * math.Pow(2, v.Zoom-minZoom),
		cx:      float64(w) / 2,
		cy:      float64(h) / 2,
	}
}

// project returns the micro-pixel position of p and whether p is on the
// visible hemisphere.
func (pr projector) project(p scene.LngLat) (x, y float64, visible bool) {
	lat := p.Lat * deg
	dLon := p.Lon*deg - pr.lon0
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	cosDLon := math.Cos(dLon)

	if pr.sinLat0*sinLat+pr.cosLat0*cosLat*cosDLon < 0 {
		return 0, 0, false
	}
	x = pr.radius * cosLat * math.Sin(dLon)
	y = pr.radius * (pr.cosLat0*sinLat - pr.sinLat0*cosLat*cosDLon)
	return pr.cx + x, pr.cy - y, true
}

// minArcSegments keeps short arcs smooth when zoomed in.
const minArcSegments = 8

// greatCircle returns points along the shortest arc from a to b, about
// one every stepDeg degrees and never fewer than minArcSegments
// segments, both ends included.
func greatCircle(a, b scene.LngLat, stepDeg float64) []scene.LngLat {
	ax, ay, az := toVec(a)
	bx, by, bz := toVec(b)
	dot := math.Max(-1, math.Min(1, ax*bx+ay*by+az*bz))
	omega := math.Acos(dot)
	if omega < 1e-9 {
		return []scene.LngLat{a, b}
	}

	n := max(int(math.Ceil(omega/(stepDeg*deg))), minArcSegments)
	sinOmega := math.Sin(omega)
	out := make([]scene.LngLat, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		var x, y, z float64
		if sinOmega < 1e-9 {
			// Antipodal ends: any great circle works; fall back to linear.
			x, y, z = ax+(bx-ax)*t, ay+(by-ay)*t, az+(bz-az)*t
		} else {
			s0 := math.Sin((1-t)*omega) / sinOmega
			s1 := math.Sin(t*omega) / sinOmega
			x, y, z = s0*ax+s1*bx, s0*ay+s1*by, s0*az+s1*bz
		}
		out = append(out, fromVec(x, y, z))
	}
	return out
}

func toVec(p scene.LngLat) (x, y, z float64) {
	lat, lon := p.Lat*deg, p.Lon*deg
	return math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)
}

func fromVec(x, y, z float64) scene.LngLat {
	return scene.LngLat{
		Lon: math.Atan2(y, x) / deg,
		Lat: math.Atan2(z, math.Hypot(x, y)) / deg,
	}
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
