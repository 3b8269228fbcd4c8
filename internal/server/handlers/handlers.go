// Package handlers implements the HTTP endpoints of the data story API.
// Every JSON endpoint answers with the response envelope; computed views
// are cached per snapshot and query.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/datastory/internal/server/cache"
	"github.com/agentstation/datastory/internal/server/events"
	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/internal/server/sse"
	ws "github.com/agentstation/datastory/internal/server/websocket"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/story"
)

// Datasets is the snapshot source the handlers read from.
type Datasets interface {
	Snapshot() (*datasets.Snapshot, error)
	Reload(ctx context.Context) (*datasets.Snapshot, error)
}

// Handlers holds the dependencies of every endpoint.
type Handlers struct {
	data           Datasets
	narrator       story.Narrator
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	version        string
	startTime      time.Time
}

// New creates the handlers. A nil narrator falls back to the template
// narrator.
func New(
	data Datasets,
	narrator story.Narrator,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	version string,
) *Handlers {
	if narrator == nil {
		narrator = story.TemplateNarrator{}
	}
	return &Handlers{
		data:           data,
		narrator:       narrator,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		version:        version,
		startTime:      time.Now(),
	}
}

// cached answers with compute's result for the current snapshot. Results
// are keyed by snapshot load time, path and query so a reload never serves
// stale views.
func (h *Handlers) cached(w http.ResponseWriter, r *http.Request, compute func(*datasets.Snapshot) (any, error)) {
	snap, err := h.data.Snapshot()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	key := fmt.Sprintf("%d|%s", snap.LoadedAt.UnixNano(), cache.Key(r.URL.Path, r.URL.Query()))
	v, err := h.cache.GetOrCompute(key, func() (any, error) {
		return compute(snap)
	})
	if err != nil {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, v)
}
