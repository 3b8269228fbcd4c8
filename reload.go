package datastory

import (
	"context"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/errors"
)

// Reloader re-reads the data folder.
type Reloader interface {
	// Reload loads every dataset and swaps the result in. On failure the
	// previous snapshot stays current.
	Reload(ctx context.Context) (*datasets.Snapshot, error)
}

// Reload loads every dataset and swaps the result in.
func (c *client) Reload(ctx context.Context) (*datasets.Snapshot, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	snap, err := c.loader.LoadAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			err = &errors.ResourceError{
				Operation: "reload",
				Resource:  "datasets",
				ID:        c.options.dir,
				Message:   ctx.Err().Error(),
				Err:       errors.ErrCanceled,
			}
		}
		c.logger.Error().Err(err).Str("dir", c.options.dir).Msg("Reload failed")
		c.hooks.triggerReloadFailed(err)
		return nil, err
	}

	old := c.setSnapshot(snap)
	c.hooks.triggerReloaded(old, snap)
	return snap, nil
}
