package handlers

import (
	"net/http"

	"github.com/agentstation/datastory/internal/server/response"
)

// HandleHealth handles GET /health and GET /api/v1/health.
// @Summary Health check
// @Description Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "datastory-api",
		"version": h.version,
	})
}

// HandleReady handles GET /api/v1/ready.
// @Summary Readiness check
// @Description Ready once a dataset snapshot is loaded
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.data.Snapshot()
	if err != nil {
		response.ServiceUnavailable(w, "Datasets not loaded")
		return
	}
	response.OK(w, map[string]any{
		"status":            "ready",
		"loaded_at":         snap.LoadedAt,
		"warnings":          len(snap.Warnings),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
