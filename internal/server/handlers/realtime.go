package handlers

import (
	"net/http"

	"github.com/google/uuid"

	ws "github.com/agentstation/datastory/internal/server/websocket"
)

// HandleWebSocket handles GET /api/v1/updates/ws.
// @Summary WebSocket updates
// @Description Pushes dataset.reloaded, dataset.reload_failed and client.connected events
// @Tags updates
// @Success 101 "Switching Protocols"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles GET /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream of dataset events
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
