package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/cmd/application"
	"github.com/agentstation/cognates/internal/server/events"
	"github.com/agentstation/cognates/internal/server/events/adapters"
	"github.com/agentstation/cognates/internal/server/middleware"
	"github.com/agentstation/cognates/internal/server/sse"
	ws "github.com/agentstation/cognates/internal/server/websocket"
	"github.com/agentstation/cognates/pkg/scene"
	"github.com/agentstation/cognates/pkg/search"
	"github.com/agentstation/cognates/pkg/selection"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	explorer       cognates.Explorer
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	limiter        *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	started        atomic.Bool
	startTime      time.Time
}

// New creates a server around a fresh explorer session.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}

	explorer, err := app.Explorer(cognates.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:            app,
		explorer:       explorer,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	s.connectHooks()
	logger.Debug().Msg("Server instance created")
	return s, nil
}

// lineEvent carries a line with its ready-to-add GeoJSON source data.
type lineEvent struct {
	scene.Line
	GeoJSON map[string]any `json:"geojson"`
}

// connectHooks publishes every explorer change to the broker.
func (s *Server) connectHooks() {
	s.explorer.OnMarkerRemoved(func(m scene.Marker) {
		s.broker.Publish(events.MarkerRemoved, m)
	})
	s.explorer.OnLineRemoved(func(l scene.Line) {
		s.broker.Publish(events.LineRemoved, l)
	})
	s.explorer.OnMarkerAdded(func(m scene.Marker) {
		s.broker.Publish(events.MarkerAdded, m)
	})
	s.explorer.OnLineAdded(func(l scene.Line) {
		s.broker.Publish(events.LineAdded, lineEvent{Line: l, GeoJSON: l.GeoJSON()})
	})
	s.explorer.OnCameraMoved(func(cam scene.Camera) {
		s.broker.Publish(events.CameraFly, cam)
	})
	s.explorer.OnPanelChanged(func(open string) {
		s.broker.Publish(events.PanelToggled, map[string]any{"open": open})
	})
	s.explorer.OnSelectionChanged(func(st selection.State) {
		s.broker.Publish(events.SelectionChanged, st)
	})
	s.explorer.OnSearchChanged(func(snap search.Snapshot) {
		s.broker.Publish(events.SearchUpdated, snap)
	})
	s.logger.Debug().Msg("Explorer hooks connected to event broker")
}

// Start starts the explorer and the background services.
func (s *Server) Start() error {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)
	if s.limiter != nil {
		go s.limiter.Run(s.ctx, 5*time.Minute)
	}

	if err := s.explorer.Start(s.ctx); err != nil {
		return err
	}
	s.started.Store(true)
	s.logger.Debug().Msg("All background services started")
	return nil
}

// Handler returns the configured http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown closes the explorer and stops the background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.started.Store(false)

	err := s.explorer.Close()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.explorer.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
	}
	return err
}

// Explorer returns the shared explorer session.
func (s *Server) Explorer() cognates.Explorer {
	return s.explorer
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Addr returns the listen address from the configuration.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// HTTPServer returns an http.Server serving Handler with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
