// Package globe draws the explorer's scene on an orthographic globe made
// of braille characters, for terminals.
//
// Backend is the scene.Backend the renderer mutates. Render turns its
// graph into text for a given view.
package globe

import (
	"context"
	"sync/atomic"

	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/scene/memory"
)

// Backend keeps the scene in memory and signals every change so a UI can
// redraw.
type Backend struct {
	*memory.Backend

	changes chan struct{}
	flights atomic.Uint64
}

var _ scene.Backend = (*Backend)(nil)

// NewBackend creates an unopened globe backend.
func NewBackend() *Backend {
	return &Backend{
		Backend: memory.New(memory.WithoutOpLog()),
		changes: make(chan struct{}, 1),
	}
}

// Changes delivers a signal after one or more changes. Signals coalesce.
func (b *Backend) Changes() <-chan struct{} {
	return b.changes
}

// Notify signals a change without blocking.
func (b *Backend) Notify() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Flights counts camera moves, so a UI can tell a new FlyTo from one it
// already animated even when the target is unchanged.
func (b *Backend) Flights() uint64 {
	return b.flights.Load()
}

func (b *Backend) notifyAfter(err error) error {
	if err == nil {
		b.Notify()
	}
	return err
}

// Open implements scene.Backend.
func (b *Backend) Open(ctx context.Context, opts scene.MapOptions) error {
	return b.notifyAfter(b.Backend.Open(ctx, opts))
}

// AddMarker implements scene.Backend.
func (b *Backend) AddMarker(m scene.Marker) error {
	return b.notifyAfter(b.Backend.AddMarker(m))
}

// RemoveMarker implements scene.Backend.
func (b *Backend) RemoveMarker(id string) error {
	return b.notifyAfter(b.Backend.RemoveMarker(id))
}

// AddLine implements scene.Backend.
func (b *Backend) AddLine(l scene.Line) error {
	return b.notifyAfter(b.Backend.AddLine(l))
}

// RemoveLayer implements scene.Backend.
func (b *Backend) RemoveLayer(id string) error {
	return b.notifyAfter(b.Backend.RemoveLayer(id))
}

// RemoveSource implements scene.Backend.
func (b *Backend) RemoveSource(id string) error {
	return b.notifyAfter(b.Backend.RemoveSource(id))
}

// FlyTo implements scene.Backend.
func (b *Backend) FlyTo(cam scene.Camera) error {
	if err := b.Backend.FlyTo(cam); err != nil {
		return err
	}
	b.flights.Add(1)
	b.Notify()
	return nil
}

// ShowPanel implements scene.Backend.
func (b *Backend) ShowPanel(markerID string, visible bool) error {
	return b.notifyAfter(b.Backend.ShowPanel(markerID, visible))
}

// Close implements scene.Backend.
func (b *Backend) Close() error {
	return b.notifyAfter(b.Backend.Close())
}
