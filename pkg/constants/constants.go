// Package constants provides shared constants used throughout cognates:
// remote service defaults, timing, map camera bounds and limits.
package constants

import "time"

// Remote inquiry service.
const (
	// DefaultAPIURL is the base URL of the CogNet world inquiry service.
	DefaultAPIURL = "https://cognet-world-inquiry-service.karatay.dev/api/v1"

	// SuggestionsPath returns word suggestions for a prefix.
	SuggestionsPath = "/search/suggestions"

	// ChainsPath is followed by a concept id.
	ChainsPath = "/search/chains/concept/"
)

// Timeout constants.
const (
	// DefaultHTTPTimeout is the timeout for requests to the inquiry service.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the timeout for general operations.
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful server shutdown.
	ShutdownTimeout = 10 * time.Second
)

// Search constants.
const (
	// SearchDebounce is the quiet period after the last keystroke before a
	// suggestion request is sent.
	SearchDebounce = 500 * time.Millisecond

	// MinPrefixLength is the shortest trimmed input that triggers a search.
	MinPrefixLength = 2

	// SuggestionCacheTTL is how long suggestions for a prefix are reused.
	SuggestionCacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often expired cache entries are purged.
	CacheCleanupInterval = 10 * time.Minute
)

// Rate limiting for outbound requests.
const (
	// DefaultRateLimit is requests per second to the inquiry service.
	DefaultRateLimit = 10

	// BurstSize is the token bucket burst.
	BurstSize = 1
)

// Map constants.
const (
	// MapStyleURL is the vector style used by the browser globe.
	MapStyleURL = "https://demotiles.maplibre.org/style.json"

	// MapProjection is the projection set once the style has loaded.
	MapProjection = "globe"

	// InitialLongitude and InitialLatitude center the map on creation.
	InitialLongitude = 25.0
	InitialLatitude  = 52.0

	// InitialZoom is both the creation zoom and the recenter zoom.
	InitialZoom = 3.3

	// MinZoom and MaxZoom bound user zoom.
	MinZoom = 2.5
	MaxZoom = 5.5

	// InitialPitch tilts the camera.
	InitialPitch = 75.0

	// RecenterLatitudeOffset is added to the selected word's latitude when
	// flying to it so the word sits below the tilted horizon.
	RecenterLatitudeOffset = 10.0
)

// Scene artifact styling and naming.
const (
	// MarkerClass tags every marker element.
	MarkerClass = "marker"

	// MarkerIDPrefix prefixes marker ids ("marker-{chain}-{node}").
	MarkerIDPrefix = "marker-"

	// LineIDPrefix is reserved for line layers and sources ("line-{chain}-{node}").
	LineIDPrefix = "line-"

	// LineWidth is the stroke width of chain lines.
	LineWidth = 2.0

	// LineOpacity is the stroke opacity of chain lines.
	LineOpacity = 0.7

	// LineJoin and LineCap are the stroke join and cap styles.
	LineJoin = "round"
	LineCap  = "round"
)

// File permission constants.
const (
	// DirPermissions is the default permission for created directories.
	DirPermissions = 0755

	// FilePermissions is the default permission for created files.
	FilePermissions = 0644
)

// Limit constants.
const (
	// ChannelBufferSize is the default buffer size for event channels.
	ChannelBufferSize = 256

	// ClientBufferSize is the per-connection queue of a streaming client.
	// It holds a full redraw of a large concept; a client that falls
	// further behind is disconnected and resyncs from the scene snapshot.
	ClientBufferSize = 4096

	// MaxRequestBodyBytes bounds JSON request bodies accepted by the server.
	MaxRequestBodyBytes = 1 << 20
)
