package handlers

import (
	"net/http"

	"github.com/agentstation/cognates/internal/server/response"
	"github.com/agentstation/cognates/pkg/render"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/selection"
)

// sceneSnapshot is what a browser needs to catch up before replaying
// stream events with a higher seq.
type sceneSnapshot struct {
	Seq       uint64          `json:"seq"`
	Markers   []scene.Marker  `json:"markers"`
	Lines     []scene.Line    `json:"lines"`
	Camera    *scene.Camera   `json:"camera,omitempty"`
	OpenPanel string          `json:"open_panel"`
	Selection selection.State `json:"selection"`
	Status    render.Status   `json:"status"`
}

// HandleScene handles GET /api/v1/scene.
func (h *Handlers) HandleScene(w http.ResponseWriter, _ *http.Request) {
	// Read seq first: events published after it are replayed on top of
	// a graph that may already contain them, and the page applies them
	// idempotently.
	seq := h.broker.LastSeq()
	g := h.explorer.Scene()

	snap := sceneSnapshot{
		Seq:       seq,
		Markers:   g.Markers,
		Lines:     g.Lines,
		Camera:    g.Camera,
		OpenPanel: h.explorer.OpenPanel(),
		Selection: h.explorer.Selection(),
		Status:    h.explorer.Status(),
	}
	if snap.Markers == nil {
		snap.Markers = []scene.Marker{}
	}
	if snap.Lines == nil {
		snap.Lines = []scene.Line{}
	}
	response.OK(w, snap)
}

// HandleMapOptions handles GET /api/v1/map.
func (h *Handlers) HandleMapOptions(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.explorer.MapOptions())
}

// HandleMapClick handles POST /api/v1/map/click.
func (h *Handlers) HandleMapClick(w http.ResponseWriter, _ *http.Request) {
	h.explorer.ClickMap()
	response.OK(w, map[string]any{"open": ""})
}

// HandleMarkerClick handles POST /api/v1/markers/{id}/click.
func (h *Handlers) HandleMarkerClick(w http.ResponseWriter, _ *http.Request, markerID string) {
	open, err := h.explorer.ClickMarker(markerID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, map[string]any{"open": open})
}
