package handlers

import (
	"net/http"

	"github.com/agentstation/cognates/internal/server/response"
	"github.com/agentstation/cognates/pkg/chains"
)

// HandleGetSelection handles GET /api/v1/selection.
func (h *Handlers) HandleGetSelection(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.explorer.Selection())
}

// HandlePutSelection handles PUT /api/v1/selection with a Result body.
// The chains are drawn asynchronously and arrive over the update streams.
func (h *Handlers) HandlePutSelection(w http.ResponseWriter, r *http.Request) {
	var result chains.Result
	if err := decodeBody(w, r, &result); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if err := h.explorer.Select(&result); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.explorer.DismissSearch()
	response.Accepted(w, h.explorer.Selection())
}

// HandleDeleteSelection handles DELETE /api/v1/selection.
func (h *Handlers) HandleDeleteSelection(w http.ResponseWriter, _ *http.Request) {
	h.explorer.ClearSelection()
	response.Accepted(w, h.explorer.Selection())
}

type allChainsRequest struct {
	ShowAllChains *bool `json:"show_all_chains"`
}

// HandleAllChains handles PUT /api/v1/selection/all-chains.
func (h *Handlers) HandleAllChains(w http.ResponseWriter, r *http.Request) {
	var req allChainsRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if req.ShowAllChains == nil {
		response.BadRequest(w, "show_all_chains is required", "")
		return
	}
	h.explorer.SetShowAllChains(*req.ShowAllChains)
	response.Accepted(w, h.explorer.Selection())
}

// HandleRecenter handles POST /api/v1/selection/recenter.
func (h *Handlers) HandleRecenter(w http.ResponseWriter, _ *http.Request) {
	if err := h.explorer.Recenter(); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, h.explorer.Selection())
}
