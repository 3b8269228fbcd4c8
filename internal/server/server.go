// Package server provides the HTTP server of the data story API.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/agentstation/datastory"
	"github.com/agentstation/datastory/internal/cmd/application"
	"github.com/agentstation/datastory/internal/server/cache"
	"github.com/agentstation/datastory/internal/server/events"
	"github.com/agentstation/datastory/internal/server/events/adapters"
	"github.com/agentstation/datastory/internal/server/handlers"
	"github.com/agentstation/datastory/internal/server/middleware"
	"github.com/agentstation/datastory/internal/server/sse"
	ws "github.com/agentstation/datastory/internal/server/websocket"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/story"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	client         datastory.Client
	narrator       story.Narrator
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	registry       *prometheus.Registry
	metrics        *middleware.Metrics
	limiter        *middleware.RateLimiter
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startOnce      sync.Once
}

// New creates a server for the application's dataset client.
func New(ctx context.Context, app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := app.Client(ctx)
	if err != nil {
		return nil, err
	}
	narrator, err := app.Narrator(ctx)
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	// Subscribe transports to broker
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bg, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:            app,
		client:         client,
		narrator:       narrator,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
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
		registry: registry,
		metrics:  middleware.NewMetrics(registry),
		logger:   logger,
		config:   cfg,
		ctx:      bg,
		cancel:   cancel,
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	s.registerGauges()
	s.connectHooks()

	logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks publishes reload outcomes and new connections to the
// broker. A successful reload also flushes the response cache.
func (s *Server) connectHooks() {
	s.client.OnReloaded(func(_, cur *datasets.Snapshot) {
		s.cache.Clear()
		sum := handlers.Summarize(cur)
		s.broker.Publish(events.DatasetReloaded, events.ReloadedData{
			Dir:      sum.Dir,
			LoadedAt: sum.LoadedAt,
			Rows:     sum.Rows,
			Warnings: sum.Warnings,
		})
		s.logger.Info().
			Str("dir", sum.Dir).
			Interface("rows", sum.Rows).
			Msg("Dataset reloaded event published")
	})

	s.client.OnReloadFailed(func(err error) {
		s.broker.Publish(events.DatasetReloadFailed, events.ReloadFailedData{
			Dir:   s.client.Dir(),
			Error: err.Error(),
		})
		s.logger.Debug().Err(err).Msg("Dataset reload failed event published")
	})

	s.wsHub.OnConnect(func(c *ws.Client, total int) {
		s.broker.Publish(events.ClientConnected, map[string]any{
			"transport": "websocket",
			"client_id": c.ID(),
			"clients":   total,
		})
	})

	s.sseBroadcaster.OnConnect(func(total int) {
		s.broker.Publish(events.ClientConnected, map[string]any{
			"transport": "sse",
			"clients":   total,
		})
	})
}

// registerGauges exposes realtime and cache state on /metrics.
func (s *Server) registerGauges() {
	gauge := func(name, help string, fn func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "datastory",
			Name:      name,
			Help:      help,
		}, fn)
	}
	s.registry.MustRegister(
		gauge("websocket_clients", "Connected WebSocket clients.", func() float64 {
			return float64(s.wsHub.ClientCount())
		}),
		gauge("sse_clients", "Connected SSE clients.", func() float64 {
			return float64(s.sseBroadcaster.ClientCount())
		}),
		gauge("cache_items", "Cached API responses.", func() float64 {
			return float64(s.cache.ItemCount())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "datastory",
			Name:      "events_published_total",
			Help:      "Events published to realtime clients.",
		}, func() float64 {
			published, _ := s.broker.Stats()
			return float64(published)
		}),
	)
}

// Start starts background services (broker, WebSocket hub, SSE
// broadcaster, rate limiter eviction). Calling it again has no effect.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		run := func(fn func(context.Context)) {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				fn(s.ctx)
			}()
		}
		run(s.broker.Run)
		run(s.wsHub.Run)
		run(s.sseBroadcaster.Run)
		if s.limiter != nil {
			run(s.limiter.Run)
		}
		s.logger.Debug().Msg("Background services started")
	})
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services and waits for them until ctx is
// done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Registry returns the prometheus registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}
