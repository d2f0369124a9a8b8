package cognates

import (
	"sync"

	"github.com/agentstation/cognates/pkg/search"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/selection"
)

// Hook function types for explorer events.
type (
	// MarkerAddedHook is called when a marker appears on the map.
	MarkerAddedHook func(m scene.Marker)

	// MarkerRemovedHook is called when a marker is removed from the map.
	MarkerRemovedHook func(m scene.Marker)

	// LineAddedHook is called when a chain line appears on the map.
	LineAddedHook func(l scene.Line)

	// LineRemovedHook is called when a chain line is removed.
	LineRemovedHook func(l scene.Line)

	// CameraMovedHook is called when the map flies to a new view.
	CameraMovedHook func(cam scene.Camera)

	// PanelChangedHook is called with the id of the open details panel, or "".
	PanelChangedHook func(open string)

	// SelectionChangedHook is called after the selection or the
	// show-all-chains flag changes.
	SelectionChangedHook func(st selection.State)

	// SearchChangedHook is called when the suggestion dropdown changes.
	SearchChangedHook func(snap search.Snapshot)
)

// hooks manages event callbacks. Scene hooks run while the renderer
// holds its lock and must not call back into the Explorer.
type hooks struct {
	mu                 sync.RWMutex
	onMarkerAdded      []MarkerAddedHook
	onMarkerRemoved    []MarkerRemovedHook
	onLineAdded        []LineAddedHook
	onLineRemoved      []LineRemovedHook
	onCameraMoved      []CameraMovedHook
	onPanelChanged     []PanelChangedHook
	onSelectionChanged []SelectionChangedHook
	onSearchChanged    []SearchChangedHook

	// shown is what hooks were last told is on the map.
	shown scene.Graph
}

func newHooks() *hooks {
	return &hooks{}
}

// OnMarkerAdded registers a callback for markers appearing.
func (h *hooks) OnMarkerAdded(fn MarkerAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMarkerAdded = append(h.onMarkerAdded, fn)
}

// OnMarkerRemoved registers a callback for markers being removed.
func (h *hooks) OnMarkerRemoved(fn MarkerRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMarkerRemoved = append(h.onMarkerRemoved, fn)
}

// OnLineAdded registers a callback for lines appearing.
func (h *hooks) OnLineAdded(fn LineAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLineAdded = append(h.onLineAdded, fn)
}

// OnLineRemoved registers a callback for lines being removed.
func (h *hooks) OnLineRemoved(fn LineRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLineRemoved = append(h.onLineRemoved, fn)
}

// OnCameraMoved registers a callback for camera moves.
func (h *hooks) OnCameraMoved(fn CameraMovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCameraMoved = append(h.onCameraMoved, fn)
}

// OnPanelChanged registers a callback for details panel changes.
func (h *hooks) OnPanelChanged(fn PanelChangedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPanelChanged = append(h.onPanelChanged, fn)
}

// OnSelectionChanged registers a callback for selection changes.
func (h *hooks) OnSelectionChanged(fn SelectionChangedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSelectionChanged = append(h.onSelectionChanged, fn)
}

// OnSearchChanged registers a callback for dropdown changes.
func (h *hooks) OnSearchChanged(fn SearchChangedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSearchChanged = append(h.onSearchChanged, fn)
}

// triggerSceneUpdate compares what hooks last saw with g and fires the
// added and removed hooks for the difference.
func (h *hooks) triggerSceneUpdate(g scene.Graph) {
	h.mu.Lock()
	old := h.shown
	h.shown = g
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()

	cs := scene.Diff(old, g)
	for _, m := range cs.RemovedMarkers {
		for _, hook := range h.onMarkerRemoved {
			hook(m)
		}
	}
	for _, l := range cs.RemovedLines {
		for _, hook := range h.onLineRemoved {
			hook(l)
		}
	}
	for _, m := range cs.AddedMarkers {
		for _, hook := range h.onMarkerAdded {
			hook(m)
		}
	}
	for _, l := range cs.AddedLines {
		for _, hook := range h.onLineAdded {
			hook(l)
		}
	}
}

// SceneCleared implements render.Observer.
func (h *hooks) SceneCleared() {
	h.triggerSceneUpdate(scene.Graph{})
}

// SceneDrawn implements render.Observer.
func (h *hooks) SceneDrawn(g scene.Graph) {
	h.triggerSceneUpdate(g)
}

// CameraMoved implements render.Observer.
func (h *hooks) CameraMoved(cam scene.Camera) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCameraMoved {
		hook(cam)
	}
}

// PanelChanged implements render.Observer.
func (h *hooks) PanelChanged(open string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onPanelChanged {
		hook(open)
	}
}

func (h *hooks) triggerSelectionChanged(st selection.State) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onSelectionChanged {
		hook(st)
	}
}

func (h *hooks) triggerSearchChanged(snap search.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onSearchChanged {
		hook(snap)
	}
}
