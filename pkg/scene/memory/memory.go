// Package memory provides an in-process map backend. It keeps the drawn
// artifacts in maps, records every operation, and is used by headless
// commands, the browser server and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agentstation/cognates/pkg/errors"
	"github.com/agentstation/cognates/pkg/scene"
)

// OpKind names a backend operation.
type OpKind string

// Operation kinds recorded in the log.
const (
	OpOpen         OpKind = "open"
	OpAddMarker    OpKind = "add_marker"
	OpRemoveMarker OpKind = "remove_marker"
	OpAddLayer     OpKind = "add_layer"
	OpAddSource    OpKind = "add_source"
	OpRemoveLayer  OpKind = "remove_layer"
	OpRemoveSource OpKind = "remove_source"
	OpFlyTo        OpKind = "fly_to"
	OpShowPanel    OpKind = "show_panel"
	OpHidePanel    OpKind = "hide_panel"
	OpClose        OpKind = "close"
)

// Op is one recorded backend call.
type Op struct {
	Kind OpKind
	ID   string
}

// Option configures a Backend.
type Option func(*Backend)

// WithLoaded sets whether the map reports its style as loaded. Defaults to true.
func WithLoaded(loaded bool) Option {
	return func(b *Backend) {
		b.loaded = loaded
	}
}

// WithoutOpLog stops the backend from recording operations, for
// long-lived sessions that never inspect Ops.
func WithoutOpLog() Option {
	return func(b *Backend) {
		b.noOps = true
	}
}

// WithBaseLayers registers layers and sources that belong to the style
// rather than to the explorer, e.g. "background".
func WithBaseLayers(ids ...string) Option {
	return func(b *Backend) {
		for _, id := range ids {
			b.layers[id] = scene.Line{ID: id}
			b.sources[id] = scene.Line{ID: id}
		}
	}
}

// Backend is a scene.Backend held in memory. It is safe for concurrent
// use so observers can read while a renderer draws.
type Backend struct {
	mu      sync.RWMutex
	opened  bool
	closed  bool
	loaded  bool
	opts    scene.MapOptions
	markers map[string]scene.Marker
	classes map[string]string
	layers  map[string]scene.Line
	sources map[string]scene.Line
	camera  scene.Camera
	panel   map[string]bool
	ops     []Op
	noOps   bool
}

var _ scene.Backend = (*Backend)(nil)

// New creates an unopened backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		loaded:  true,
		markers: make(map[string]scene.Marker),
		classes: make(map[string]string),
		layers:  make(map[string]scene.Line),
		sources: make(map[string]scene.Line),
		panel:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open implements scene.Backend.
func (b *Backend) Open(_ context.Context, opts scene.MapOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opened {
		return errors.ErrAlreadyExists
	}
	b.opened = true
	b.closed = false
	b.opts = opts
	b.camera = scene.Camera{Center: opts.Center, Zoom: opts.Zoom}
	b.record(OpOpen, "")
	return nil
}

// Loaded implements scene.Backend.
func (b *Backend) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// SetLoaded flips the loaded state.
func (b *Backend) SetLoaded(loaded bool) {
	b.mu.Lock()
	b.loaded = loaded
	b.mu.Unlock()
}

// MarkerIDs implements scene.Backend.
func (b *Backend) MarkerIDs(class string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.markers))
	for id := range b.markers {
		if b.classes[id] == class {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AddMarker implements scene.Backend.
func (b *Backend) AddMarker(m scene.Marker) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	if _, ok := b.markers[m.ID]; ok {
		return fmt.Errorf("marker %s: %w", m.ID, errors.ErrAlreadyExists)
	}
	b.markers[m.ID] = m
	b.classes[m.ID] = m.Class
	b.record(OpAddMarker, m.ID)
	return nil
}

// RemoveMarker implements scene.Backend.
func (b *Backend) RemoveMarker(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.markers[id]; !ok {
		return errors.NewNotFoundError("marker", id)
	}
	delete(b.markers, id)
	delete(b.classes, id)
	delete(b.panel, id)
	b.record(OpRemoveMarker, id)
	return nil
}

// LayerIDs implements scene.Backend.
func (b *Backend) LayerIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedKeys(b.layers)
}

// SourceIDs implements scene.Backend.
func (b *Backend) SourceIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedKeys(b.sources)
}

// AddLine implements scene.Backend.
func (b *Backend) AddLine(l scene.Line) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	if _, ok := b.sources[l.ID]; ok {
		return fmt.Errorf("source %s: %w", l.ID, errors.ErrAlreadyExists)
	}
	if _, ok := b.layers[l.ID]; ok {
		return fmt.Errorf("layer %s: %w", l.ID, errors.ErrAlreadyExists)
	}
	b.sources[l.ID] = l
	b.record(OpAddSource, l.ID)
	b.layers[l.ID] = l
	b.record(OpAddLayer, l.ID)
	return nil
}

// RemoveLayer implements scene.Backend. A layer must be removed before its source.
func (b *Backend) RemoveLayer(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return errors.ErrNotInitialized
	}
	if _, ok := b.layers[id]; !ok {
		return errors.NewNotFoundError("layer", id)
	}
	delete(b.layers, id)
	b.record(OpRemoveLayer, id)
	return nil
}

// RemoveSource implements scene.Backend. Removing a source that a layer
// still uses fails.
func (b *Backend) RemoveSource(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return errors.ErrNotInitialized
	}
	if _, ok := b.sources[id]; !ok {
		return errors.NewNotFoundError("source", id)
	}
	if _, ok := b.layers[id]; ok {
		return fmt.Errorf("source %s is in use by layer %s: %w", id, id, errors.ErrInvalidInput)
	}
	delete(b.sources, id)
	b.record(OpRemoveSource, id)
	return nil
}

// FlyTo implements scene.Backend.
func (b *Backend) FlyTo(cam scene.Camera) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usable(); err != nil {
		return err
	}
	cam.Zoom = b.opts.ClampZoom(cam.Zoom)
	b.camera = cam
	b.record(OpFlyTo, "")
	return nil
}

// ShowPanel implements scene.Backend.
func (b *Backend) ShowPanel(markerID string, visible bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.markers[markerID]; !ok {
		return errors.NewNotFoundError("marker", markerID)
	}
	if visible {
		b.panel[markerID] = true
		b.record(OpShowPanel, markerID)
		return nil
	}
	if b.panel[markerID] {
		delete(b.panel, markerID)
		b.record(OpHidePanel, markerID)
	}
	return nil
}

// Close implements scene.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return nil
	}
	b.opened = false
	b.closed = true
	b.record(OpClose, "")
	return nil
}

// Options returns the options the map was opened with.
func (b *Backend) Options() scene.MapOptions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts
}

// Camera returns the current camera.
func (b *Backend) Camera() scene.Camera {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.camera
}

// OpenPanels returns the ids of markers whose panel is visible.
func (b *Backend) OpenPanels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return sortedKeys(b.panel)
}

// Graph returns what is currently drawn, ordered by id.
func (b *Backend) Graph() scene.Graph {
	b.mu.RLock()
	defer b.mu.RUnlock()
	g := scene.Graph{Markers: make([]scene.Marker, 0, len(b.markers)), Lines: []scene.Line{}}
	for _, id := range sortedKeys(b.markers) {
		g.Markers = append(g.Markers, b.markers[id])
	}
	for _, id := range sortedKeys(b.layers) {
		if scene.IsLineID(id) {
			g.Lines = append(g.Lines, b.layers[id])
		}
	}
	cam := b.camera
	g.Camera = &cam
	return g
}

// Ops returns a copy of the operation log.
func (b *Backend) Ops() []Op {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

// ResetOps clears the operation log.
func (b *Backend) ResetOps() {
	b.mu.Lock()
	b.ops = nil
	b.mu.Unlock()
}

func (b *Backend) usable() error {
	if b.closed {
		return errors.ErrClosed
	}
	if !b.opened {
		return errors.ErrNotInitialized
	}
	return nil
}

func (b *Backend) record(kind OpKind, id string) {
	if b.noOps {
		return
	}
	b.ops = append(b.ops, Op{Kind: kind, ID: id})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
