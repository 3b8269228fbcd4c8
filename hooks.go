package datastory

import (
	"sync"

	"github.com/agentstation/datastory/pkg/datasets"
)

// Hook function types for reload events.
type (
	// ReloadedHook is called after a new snapshot has been swapped in. old is
	// nil for the first load.
	ReloadedHook func(old, cur *datasets.Snapshot)

	// ReloadFailedHook is called when a reload fails. The previous snapshot
	// stays current.
	ReloadFailedHook func(err error)
)

// Hooks registers reload callbacks.
type Hooks interface {
	// OnReloaded registers a callback for successful reloads.
	OnReloaded(ReloadedHook)

	// OnReloadFailed registers a callback for failed reloads.
	OnReloadFailed(ReloadFailedHook)
}

type hooks struct {
	mu             sync.RWMutex
	onReloaded     []ReloadedHook
	onReloadFailed []ReloadFailedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) addReloaded(fn ReloadedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReloaded = append(h.onReloaded, fn)
}

func (h *hooks) addReloadFailed(fn ReloadFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReloadFailed = append(h.onReloadFailed, fn)
}

func (h *hooks) triggerReloaded(old, cur *datasets.Snapshot) {
	h.mu.RLock()
	fns := append([]ReloadedHook(nil), h.onReloaded...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(old, cur)
	}
}

func (h *hooks) triggerReloadFailed(err error) {
	h.mu.RLock()
	fns := append([]ReloadFailedHook(nil), h.onReloadFailed...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// OnReloaded registers a callback for successful reloads.
func (c *client) OnReloaded(fn ReloadedHook) {
	c.hooks.addReloaded(fn)
}

// OnReloadFailed registers a callback for failed reloads.
func (c *client) OnReloadFailed(fn ReloadFailedHook) {
	c.hooks.addReloadFailed(fn)
}
