package server

import (
	"net/http"
	"strings"

	"github.com/agentstation/cognates/internal/server/handlers"
	"github.com/agentstation/cognates/internal/server/middleware"
	"github.com/agentstation/cognates/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.explorer,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
		s.started.Load,
		s.startTime,
	)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// methods dispatches a route by HTTP method and answers 405 otherwise.
func methods(routes map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fn, ok := routes[r.Method]; ok {
			fn(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	}
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Globe page; "/" also catches every unknown path and answers 404.
	mux.HandleFunc("/", h.HandleIndex(handlers.IndexPage(prefix)))

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Search
	mux.HandleFunc(prefix+"/suggestions", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.HandleSuggestions,
	}))

	// Selection
	mux.HandleFunc(prefix+"/selection", methods(map[string]http.HandlerFunc{
		http.MethodGet:    h.HandleGetSelection,
		http.MethodPut:    h.HandlePutSelection,
		http.MethodDelete: h.HandleDeleteSelection,
	}))
	mux.HandleFunc(prefix+"/selection/all-chains", methods(map[string]http.HandlerFunc{
		http.MethodPut: h.HandleAllChains,
	}))
	mux.HandleFunc(prefix+"/selection/recenter", methods(map[string]http.HandlerFunc{
		http.MethodPost: h.HandleRecenter,
	}))

	// Map
	mux.HandleFunc(prefix+"/map", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.HandleMapOptions,
	}))
	mux.HandleFunc(prefix+"/map/click", methods(map[string]http.HandlerFunc{
		http.MethodPost: h.HandleMapClick,
	}))
	mux.HandleFunc(prefix+"/scene", methods(map[string]http.HandlerFunc{
		http.MethodGet: h.HandleScene,
	}))
	mux.HandleFunc(prefix+"/markers/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/markers/"))
		if len(parts) != 2 || parts[1] != "click" {
			response.NotFound(w, "Not found", r.URL.Path)
			return
		}
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleMarkerClick(w, r, parts[0])
	})

	// Real-time endpoints
	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/updates/stream", h.HandleSSE)
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.limiter != nil {
		handler = middleware.RateLimit(s.limiter)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery (always enabled)
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	)(handler)
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
