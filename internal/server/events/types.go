// Package events fans explorer changes out to every connected browser.
//
// Explorer hooks publish into a Broker; transport adapters (WebSocket,
// SSE) subscribe to it. Each browser replays the scene operations in the
// order they were published.
package events

import "time"

// EventType represents the type of explorer event.
type EventType string

// Event types.
const (
	// Scene operations (from explorer hooks).
	MarkerAdded   EventType = "marker.added"
	MarkerRemoved EventType = "marker.removed"
	LineAdded     EventType = "line.added"
	LineRemoved   EventType = "line.removed"
	CameraFly     EventType = "camera.fly"
	PanelToggled  EventType = "panel.toggled"

	// Session state.
	SelectionChanged EventType = "selection.changed"
	SearchUpdated    EventType = "search.updated"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event is one published change.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
