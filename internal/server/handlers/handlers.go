// Package handlers provides HTTP request handlers for the cognates browser API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/internal/server/events"
	"github.com/agentstation/cognates/internal/server/sse"
	ws "github.com/agentstation/cognates/internal/server/websocket"
	"github.com/agentstation/cognates/pkg/constants"
	"github.com/agentstation/cognates/pkg/errors"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	explorer       cognates.Explorer
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	ready          func() bool
	startTime      time.Time
}

// New creates a new Handlers instance. ready reports whether the explorer
// has started.
func New(
	explorer cognates.Explorer,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	ready func() bool,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		explorer:       explorer,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		ready:          ready,
		startTime:      startTime,
	}
}

// decodeBody reads a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError("body", nil, err.Error())
	}
	return nil
}
