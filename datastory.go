// Package datastory is the entry point for embedding the data story
// service. A Client owns the current dataset snapshot for one data folder,
// reloads it on demand or when the files change, and notifies registered
// hooks after every reload.
//
// Example usage:
//
//	ds, err := datastory.New(ctx,
//	    datastory.WithDataDir("./data"),
//	    datastory.WithWatch(time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.WatchOff()
//
//	ds.OnReloaded(func(old, cur *datasets.Snapshot) {
//	    log.Printf("reloaded %d flights", len(cur.Flights.Rows))
//	})
//
//	snap, err := ds.Snapshot()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dash := flights.Build(snap.Flights, flights.Filter{})
package datastory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Snapshots provides read access to the current snapshot.
type Snapshots interface {
	// Snapshot returns the current snapshot or errors.ErrNotReady.
	Snapshot() (*datasets.Snapshot, error)
}

// Client manages the dataset snapshot of a data folder.
type Client interface {
	Snapshots

	// Reloader re-reads the data folder
	Reloader

	// Watcher reloads automatically on file changes
	Watcher

	// Hooks registers reload callbacks
	Hooks

	// Dir returns the data folder the client reads.
	Dir() string
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	loader  *datasets.Loader
	logger  *zerolog.Logger

	mu       sync.RWMutex
	snapshot *datasets.Snapshot

	// reloadMu serialises reloads so that snapshots are swapped in order.
	reloadMu sync.Mutex

	// watch state
	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}

	hooks *hooks
}

// New creates a Client. Unless WithSnapshot supplies one, the data folder is
// loaded before New returns; a folder without a flights file is an error.
func New(ctx context.Context, opts ...Option) (Client, error) {
	o := defaults().apply(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		logger:  o.logger,
		hooks:   newHooks(),
		loader: datasets.NewLoader(o.fs, o.dir, o.files,
			datasets.WithLogger(o.logger)),
	}

	if o.snapshot != nil {
		c.snapshot = o.snapshot
	} else if _, err := c.Reload(ctx); err != nil {
		return nil, err
	}

	if o.watch {
		if err := c.WatchOn(); err != nil {
			return nil, errors.WrapResource("start", "watch", o.dir, err)
		}
	}
	return c, nil
}

// Snapshot returns the current snapshot.
func (c *client) Snapshot() (*datasets.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, errors.ErrNotReady
	}
	return c.snapshot, nil
}

// Dir returns the data folder.
func (c *client) Dir() string {
	return c.options.dir
}

// setSnapshot swaps in snap and returns the previous snapshot.
func (c *client) setSnapshot(snap *datasets.Snapshot) *datasets.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.snapshot
	c.snapshot = snap
	return old
}
