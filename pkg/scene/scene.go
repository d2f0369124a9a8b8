// Package scene turns a chain set into the artifacts drawn on the globe:
// one marker per word, one line per consecutive pair of words, and the
// camera move that frames the selection.
//
// Nothing here touches a map. Backends receive the artifacts through the
// Backend interface and decide how to show them.
package scene

import (
	"fmt"
	"strings"

	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/constants"
)

// LngLat is a position in map order: longitude first.
type LngLat struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// FromCoordinates swaps a [lat, lon] pair into map order.
func FromCoordinates(c chains.Coordinates) LngLat {
	return LngLat{Lon: c[1], Lat: c[0]}
}

// String implements fmt.Stringer.
func (p LngLat) String() string {
	return fmt.Sprintf("[%.4f, %.4f]", p.Lon, p.Lat)
}

// Marker is a pin for one chain node.
type Marker struct {
	ID              string              `json:"id" yaml:"id"`       // marker-{chain}-{node}
	Class           string              `json:"class" yaml:"class"` // always "marker"
	ChainIndex      int                 `json:"chain_index" yaml:"chain_index"`
	NodeIndex       int                 `json:"node_index" yaml:"node_index"`
	Position        LngLat              `json:"position" yaml:"position"`
	Color           string              `json:"color" yaml:"color"`
	Word            string              `json:"word" yaml:"word"`
	Transliteration string              `json:"transliteration,omitempty" yaml:"transliteration,omitempty"`
	Language        chains.LanguageInfo `json:"language" yaml:"language"`
}

// Details is the text shown in the marker's details panel.
func (m Marker) Details() string {
	var b strings.Builder
	b.WriteString(m.Word)
	if m.Transliteration != "" {
		fmt.Fprintf(&b, " (%s)", m.Transliteration)
	}
	b.WriteString("\n")
	if m.Language.Flag != "" {
		b.WriteString(m.Language.Flag)
		b.WriteString(" ")
	}
	b.WriteString(m.Language.Name)
	return b.String()
}

// Line connects node n to node n+1 of one chain.
type Line struct {
	ID         string  `json:"id" yaml:"id"` // line-{chain}-{node}; shared by source and layer
	ChainIndex int     `json:"chain_index" yaml:"chain_index"`
	NodeIndex  int     `json:"node_index" yaml:"node_index"`
	From       LngLat  `json:"from" yaml:"from"`
	To         LngLat  `json:"to" yaml:"to"`
	Color      string  `json:"color" yaml:"color"`
	Width      float64 `json:"width" yaml:"width"`
	Opacity    float64 `json:"opacity" yaml:"opacity"`
	Join       string  `json:"join" yaml:"join"`
	Cap        string  `json:"cap" yaml:"cap"`
}

// GeoJSON returns the line as a GeoJSON Feature with a LineString geometry.
func (l Line) GeoJSON() map[string]any {
	return map[string]any{
		"type":       "Feature",
		"properties": map[string]any{},
		"geometry": map[string]any{
			"type": "LineString",
			"coordinates": [][2]float64{
				{l.From.Lon, l.From.Lat},
				{l.To.Lon, l.To.Lat},
			},
		},
	}
}

// Camera is a view target.
type Camera struct {
	Center  LngLat  `json:"center" yaml:"center"`
	Zoom    float64 `json:"zoom" yaml:"zoom"`
	Animate bool    `json:"animate" yaml:"animate"`
}

// MapOptions are fixed at map creation.
type MapOptions struct {
	Style           string  `json:"style" yaml:"style"`
	Projection      string  `json:"projection" yaml:"projection"`
	Center          LngLat  `json:"center" yaml:"center"`
	Zoom            float64 `json:"zoom" yaml:"zoom"`
	MinZoom         float64 `json:"min_zoom" yaml:"min_zoom"`
	MaxZoom         float64 `json:"max_zoom" yaml:"max_zoom"`
	Pitch           float64 `json:"pitch" yaml:"pitch"`
	DragRotate      bool    `json:"drag_rotate" yaml:"drag_rotate"`
	Keyboard        bool    `json:"keyboard" yaml:"keyboard"`
	TouchZoomRotate bool    `json:"touch_zoom_rotate" yaml:"touch_zoom_rotate"`
}

// DefaultMapOptions returns the globe the explorer starts with.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Style:      constants.MapStyleURL,
		Projection: constants.MapProjection,
		Center:     LngLat{Lon: constants.InitialLongitude, Lat: constants.InitialLatitude},
		Zoom:       constants.InitialZoom,
		MinZoom:    constants.MinZoom,
		MaxZoom:    constants.MaxZoom,
		Pitch:      constants.InitialPitch,
	}
}

// ClampZoom bounds z to the map's zoom range.
func (o MapOptions) ClampZoom(z float64) float64 {
	return min(max(z, o.MinZoom), o.MaxZoom)
}

// MarkerID returns the id of the marker for node n of chain c.
func MarkerID(c, n int) string {
	return fmt.Sprintf("%s%d-%d", constants.MarkerIDPrefix, c, n)
}

// LineID returns the id of the line from node n to n+1 of chain c.
func LineID(c, n int) string {
	return fmt.Sprintf("%s%d-%d", constants.LineIDPrefix, c, n)
}

// IsLineID reports whether id is in the reserved line namespace.
func IsLineID(id string) bool {
	return strings.HasPrefix(id, constants.LineIDPrefix)
}

// CameraFor frames a selected result: its position with the latitude
// offset applied, at the initial zoom, animated.
func CameraFor(r *chains.Result) Camera {
	p := FromCoordinates(r.LanguageInfo.Coordinates)
	p.Lat += constants.RecenterLatitudeOffset
	return Camera{Center: p, Zoom: constants.InitialZoom, Animate: true}
}
