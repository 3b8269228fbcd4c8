package datastory

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/errors"
)

// Watcher controls reloading on file changes.
type Watcher interface {
	// WatchOn starts watching the data folder. Calling it while a watch is
	// running restarts the watch.
	WatchOn() error

	// WatchOff stops watching. It is safe to call when no watch runs.
	WatchOff() error
}

// WatchOn starts watching the data folder.
func (c *client) WatchOn() error {
	if c.options.fs != nil && c.options.fs.Name() != "OsFs" {
		return &errors.ValidationError{Field: "watch", Message: "file watching requires the OS filesystem"}
	}

	// Stop any running watch first
	if err := c.WatchOff(); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", c.options.dir, err)
	}
	dir, err := filepath.Abs(c.options.dir)
	if err != nil {
		dir = c.options.dir
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return errors.WrapIO("watch", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.watchMu.Lock()
	c.watchCancel = cancel
	c.watchDone = done
	c.watchMu.Unlock()

	c.logger.Info().Str("dir", dir).Dur("debounce", c.options.debounce).Msg("Watching data folder")

	go func() {
		defer close(done)
		defer func() { _ = w.Close() }()
		c.watchLoop(ctx, w.Events, w.Errors)
	}()
	return nil
}

// WatchOff stops watching and waits for the watch goroutine to exit.
func (c *client) WatchOff() error {
	c.watchMu.Lock()
	cancel, done := c.watchCancel, c.watchDone
	c.watchCancel, c.watchDone = nil, nil
	c.watchMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// watchLoop reloads once per burst of relevant events.
func (c *client) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !c.relevant(ev) {
				continue
			}
			c.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Dataset file changed")
			if timer == nil {
				timer = time.NewTimer(c.options.debounce)
			} else {
				timer.Reset(c.options.debounce)
			}
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				return
			}
			c.logger.Warn().Err(err).Msg("Watch error")

		case <-fire:
			fire = nil
			reloadCtx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
			_, err := c.Reload(reloadCtx)
			cancel()
			if err != nil && stderrors.Is(ctx.Err(), context.Canceled) {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether ev touches one of the dataset files in a way
// that changes its content.
func (c *client) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return c.loader.Files().Contains(ev.Name)
}
