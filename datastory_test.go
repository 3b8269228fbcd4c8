package datastory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/datasets/datasetstest"
	"github.com/agentstation/datastory/pkg/errors"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newMemClient(t *testing.T, files datasetstest.Files, opts ...Option) (Client, error) {
	t.Helper()
	fs := datasetstest.NewFS(t, files)
	base := []Option{
		WithFS(fs),
		WithDataDir(datasetstest.Dir),
		WithLogger(nopLogger()),
	}
	return New(context.Background(), append(base, opts...)...)
}

func TestNewLoadsSnapshot(t *testing.T) {
	c, err := newMemClient(t, datasetstest.Default())
	require.NoError(t, err)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Flights.Rows, 6)
	assert.Len(t, snap.Food.Rows, 3)
	assert.Equal(t, datasetstest.Dir, c.Dir())
}

func TestNewMissingFlights(t *testing.T) {
	files := datasetstest.Default()
	delete(files, "dashboard_flights.csv")

	_, err := newMemClient(t, files)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"empty dir", []Option{WithDataDir("")}},
		{"negative debounce", []Option{WithWatch(-time.Second)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestWithSnapshotSkipsLoading(t *testing.T) {
	snap := &datasets.Snapshot{Dir: "nowhere"}
	c, err := New(context.Background(), WithDataDir("nowhere"), WithSnapshot(snap), WithLogger(nopLogger()))
	require.NoError(t, err)

	got, err := c.Snapshot()
	require.NoError(t, err)
	assert.Same(t, snap, got)
}

func TestSnapshotNotReady(t *testing.T) {
	c := &client{}
	_, err := c.Snapshot()
	assert.True(t, errors.IsNotReady(err))
}

func TestReloadHooks(t *testing.T) {
	fs := datasetstest.NewFS(t, datasetstest.Default())
	c, err := New(context.Background(), WithFS(fs), WithDataDir(datasetstest.Dir), WithLogger(nopLogger()))
	require.NoError(t, err)

	first, err := c.Snapshot()
	require.NoError(t, err)

	var (
		gotOld, gotCur *datasets.Snapshot
		failures       []error
	)
	c.OnReloaded(func(old, cur *datasets.Snapshot) {
		gotOld, gotCur = old, cur
	})
	c.OnReloadFailed(func(err error) {
		failures = append(failures, err)
	})

	second, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, gotOld)
	assert.Same(t, second, gotCur)
	assert.Empty(t, failures)

	// A failed reload keeps the current snapshot
	require.NoError(t, fs.Remove(filepath.Join(datasetstest.Dir, "dashboard_flights.csv")))
	_, err = c.Reload(context.Background())
	require.Error(t, err)
	require.Len(t, failures, 1)
	assert.True(t, errors.IsNotFound(failures[0]))

	cur, err := c.Snapshot()
	require.NoError(t, err)
	assert.Same(t, second, cur)
}

func TestReloadCanceled(t *testing.T) {
	c, err := newMemClient(t, datasetstest.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Reload(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestWatchRequiresOsFs(t *testing.T) {
	_, err := newMemClient(t, datasetstest.Default(), WithWatch(time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRelevant(t *testing.T) {
	c, err := newMemClient(t, datasetstest.Default())
	require.NoError(t, err)
	cl := c.(*client)

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write flights", fsnotify.Event{Name: "/data/dashboard_flights.csv", Op: fsnotify.Write}, true},
		{"create food", fsnotify.Event{Name: "/data/FAO.csv", Op: fsnotify.Create}, true},
		{"remove airlines", fsnotify.Event{Name: "/data/airlines.csv", Op: fsnotify.Remove}, true},
		{"chmod flights", fsnotify.Event{Name: "/data/dashboard_flights.csv", Op: fsnotify.Chmod}, false},
		{"unrelated file", fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cl.relevant(tt.ev))
		})
	}
}

func TestWatchLoopDebounces(t *testing.T) {
	fs := datasetstest.NewFS(t, datasetstest.Default())
	c, err := New(context.Background(), WithFS(fs), WithDataDir(datasetstest.Dir), WithLogger(nopLogger()))
	require.NoError(t, err)
	cl := c.(*client)
	cl.options.debounce = 20 * time.Millisecond

	var reloads atomic.Int32
	c.OnReloaded(func(_, _ *datasets.Snapshot) { reloads.Add(1) })

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		cl.watchLoop(ctx, events, errs)
	}()

	for range 5 {
		events <- fsnotify.Event{Name: "/data/dashboard_flights.csv", Op: fsnotify.Write}
	}
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Unrelated events never trigger a reload
	events <- fsnotify.Event{Name: "/data/readme.md", Op: fsnotify.Write}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	cancel()
	<-done
}

func TestWatchOnReloadsOnChange(t *testing.T) {
	dir := datasetstest.WriteDir(t, datasetstest.Default())

	c, err := New(context.Background(), WithDataDir(dir), WithWatch(20*time.Millisecond), WithLogger(nopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.WatchOff() })

	var (
		mu   sync.Mutex
		rows int
	)
	c.OnReloaded(func(_, cur *datasets.Snapshot) {
		mu.Lock()
		rows = len(cur.Flights.Rows)
		mu.Unlock()
	})

	extra := datasetstest.FlightsCSV + "2015-01-14,AA,American Airlines Inc.,JFK,John F. Kennedy International Airport,LAX,Mercredi,1,2,0,0,0,0,0,0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard_flights.csv"), []byte(extra), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rows == 7
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, c.WatchOff())
	require.NoError(t, c.WatchOff())
}
