package handlers

import (
	"bytes"
	_ "embed"
	"net/http"

	"github.com/agentstation/cognates/internal/server/response"
)

//go:embed static/index.html
var indexTemplate []byte

// IndexPage returns the globe page with its API prefix filled in.
func IndexPage(pathPrefix string) []byte {
	return bytes.ReplaceAll(indexTemplate, []byte("{{API_PREFIX}}"), []byte(pathPrefix))
}

// HandleIndex returns a handler serving page at / only.
func (h *Handlers) HandleIndex(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			response.NotFound(w, "Not found", r.URL.Path)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(page)
	}
}
