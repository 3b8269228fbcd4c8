// Package events fans dataset lifecycle events out to the real-time
// transports (WebSocket, SSE).
//
// The client's reload hooks publish to a single Broker; each transport is
// registered as a Subscriber through the adapters package.
package events

import "time"

// EventType names a dataset event.
type EventType string

// Event types.
const (
	// DatasetReloaded is published after a new snapshot is swapped in.
	DatasetReloaded EventType = "dataset.reloaded"

	// DatasetReloadFailed is published when a reload fails; the previous
	// snapshot stays current.
	DatasetReloadFailed EventType = "dataset.reload_failed"

	// ClientConnected is published by the transports when a client attaches.
	ClientConnected EventType = "client.connected"
)

// Event is one published event. ID increases monotonically per broker.
type Event struct {
	ID        uint64    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// ReloadedData is the payload of DatasetReloaded.
type ReloadedData struct {
	Dir      string         `json:"dir"`
	LoadedAt time.Time      `json:"loaded_at"`
	Rows     map[string]int `json:"rows"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ReloadFailedData is the payload of DatasetReloadFailed.
type ReloadFailedData struct {
	Dir   string `json:"dir"`
	Error string `json:"error"`
}
