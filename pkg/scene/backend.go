package scene

import "context"

// Backend is a map instance that can show markers, line layers and
// sources, move its camera and toggle marker details panels.
//
// Implementations need not be safe for concurrent use; the renderer
// serialises every call.
type Backend interface {
	// Open creates the map with fixed options.
	Open(ctx context.Context, opts MapOptions) error

	// Loaded reports whether the style has finished loading. Layers and
	// sources can only be removed from a loaded map.
	Loaded() bool

	// MarkerIDs returns the ids of marker elements carrying class.
	MarkerIDs(class string) []string
	AddMarker(m Marker) error
	RemoveMarker(id string) error

	// LayerIDs and SourceIDs list everything registered on the map,
	// including artifacts that are not lines.
	LayerIDs() []string
	SourceIDs() []string

	// AddLine registers a GeoJSON source and a line layer, both named l.ID.
	AddLine(l Line) error
	RemoveLayer(id string) error
	RemoveSource(id string) error

	FlyTo(cam Camera) error

	// ShowPanel shows or hides the details panel of a marker.
	ShowPanel(markerID string, visible bool) error

	Close() error
}
