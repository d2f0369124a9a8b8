package handlers

import (
	"net/http"

	"github.com/agentstation/cognates/internal/server/response"
	"github.com/agentstation/cognates/pkg/chains"
	"github.com/agentstation/cognates/pkg/logging"
)

// HandleSuggestions handles GET /api/v1/suggestions?prefix=.
// The page debounces typing, so the lookup runs immediately.
func (h *Handlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	results, err := h.explorer.Search(r.Context(), prefix)
	if err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Str("prefix", prefix).Msg("Suggestion lookup failed")
		response.ErrorFromType(w, err)
		return
	}
	if results == nil {
		results = []chains.Result{}
	}
	response.OK(w, results)
}
