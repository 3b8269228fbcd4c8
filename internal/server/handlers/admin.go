package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/agentstation/datastory/internal/server/response"
	"github.com/agentstation/datastory/pkg/datasets"
)

// DatasetSummary describes the current snapshot.
type DatasetSummary struct {
	Dir      string                `json:"dir"`
	LoadedAt time.Time             `json:"loaded_at"`
	Rows     map[string]int        `json:"rows"`
	Sources  []datasets.SourceInfo `json:"sources"`
	Warnings []string              `json:"warnings"`
}

// Summarize counts the rows of every dataset in snap.
func Summarize(snap *datasets.Snapshot) DatasetSummary {
	s := DatasetSummary{
		Dir:      snap.Dir,
		LoadedAt: snap.LoadedAt,
		Rows:     map[string]int{},
		Sources:  snap.Sources,
		Warnings: snap.Warnings,
	}
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	if snap.Flights != nil {
		s.Rows[datasets.DatasetFlights] = len(snap.Flights.Rows)
	}
	if snap.Life != nil {
		s.Rows[datasets.DatasetLife] = len(snap.Life.Rows)
	}
	if snap.Food != nil {
		s.Rows[datasets.DatasetFood] = len(snap.Food.Rows)
	}
	return s
}

// HandleReload handles POST /api/v1/reload.
// @Summary Reload datasets
// @Description Re-read every CSV file of the data folder
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=DatasetSummary}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /api/v1/reload [post].
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.data.Reload(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, Summarize(snap))
}

// HandleStats handles GET /api/v1/stats.
// @Summary Server statistics
// @Description Runtime, dataset, event, realtime and cache statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /api/v1/stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	published, dropped := h.broker.Stats()
	out := map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      mem.Alloc / 1024 / 1024,
			"memory_sys_mb":  mem.Sys / 1024 / 1024,
		},
		"events": map[string]any{
			"published_total": published,
			"dropped_total":   dropped,
			"subscribers":     h.broker.SubscriberCount(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"cache": h.cache.GetStats(),
	}
	if snap, err := h.data.Snapshot(); err == nil {
		out["datasets"] = Summarize(snap)
	}
	response.OK(w, out)
}
