package datasets

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/agentstation/datastory/pkg/errors"
	"github.com/agentstation/datastory/pkg/logging"
)

// Loader reads the datasets of one data folder.
type Loader struct {
	fs     afero.Fs
	dir    string
	files  Files
	logger *zerolog.Logger
	now    func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the clock used for Snapshot.LoadedAt.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

// NewLoader creates a loader for dir on fs. Empty file names take their
// defaults. A nil fs means the OS filesystem.
func NewLoader(fs afero.Fs, dir string, files Files, opts ...LoaderOption) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	l := &Loader{
		fs:     fs,
		dir:    dir,
		files:  files.WithDefaults(),
		logger: logging.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the data folder.
func (l *Loader) Dir() string {
	return l.dir
}

// Files returns the resolved file names.
func (l *Loader) Files() Files {
	return l.files
}

func (l *Loader) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.dir, name)
}

func (l *Loader) modTime(path string) time.Time {
	fi, err := l.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// LoadAirlines reads the airline lookup. A missing file yields an empty
// lookup and Missing set on the returned info.
func (l *Loader) LoadAirlines(ctx context.Context) (Lookup, SourceInfo, error) {
	path := l.path(l.files.Airlines)
	lookup, info, err := loadLookup(ctx, l.fs, path, []string{"IATA_CODE", "iata_code", "CODE"}, []string{"AIRLINE", "airline", "NAME"})
	info.Dataset = DatasetAirlines
	info.ModTime = l.modTime(path)
	if pkgerrors.IsNotFound(err) {
		info.Missing = true
		return Lookup{}, info, nil
	}
	return lookup, info, err
}

// LoadAirports reads the airport lookup. A missing file yields an empty
// lookup and Missing set on the returned info.
func (l *Loader) LoadAirports(ctx context.Context) (Lookup, SourceInfo, error) {
	path := l.path(l.files.Airports)
	lookup, info, err := loadLookup(ctx, l.fs, path, []string{"IATA_CODE", "iata_code", "CODE"}, []string{"AIRPORT", "airport", "NAME"})
	info.Dataset = DatasetAirports
	info.ModTime = l.modTime(path)
	if pkgerrors.IsNotFound(err) {
		info.Missing = true
		return Lookup{}, info, nil
	}
	return lookup, info, err
}

// LoadAll loads every dataset concurrently and assembles a Snapshot. The
// flights dataset is required; any failure of the others becomes a warning
// and the dataset falls back to its empty or sample form.
func (l *Loader) LoadAll(ctx context.Context) (*Snapshot, error) {
	start := l.now()
	snap := &Snapshot{Dir: l.dir}

	var (
		flights                  *FlightTable
		life                     *LifeTable
		food                     *FoodTable
		flightsInfo, lifeInfo    SourceInfo
		foodInfo                 SourceInfo
		airlineInfo, airportInfo SourceInfo

		mu       sync.Mutex
		degraded []string
	)
	// degrade turns an optional dataset failure into a warning. Cancellation
	// is still an error.
	degrade := func(dctx context.Context, info *SourceInfo, err error, fallback string) error {
		if ctx.Err() != nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return pkgerrors.WrapResource("load", info.Dataset, "", err)
		}
		info.Error = err.Error()
		logging.Ctx(dctx).Warn().Err(err).Str("path", info.Path).Msg("Optional dataset could not be read")
		mu.Lock()
		degraded = append(degraded, fmt.Sprintf("%s %s could not be read (%v); %s", info.Dataset, info.Path, err, fallback))
		mu.Unlock()
		return nil
	}
	scoped := func(parent context.Context, dataset string) context.Context {
		return logging.WithDataset(logging.WithLogger(parent, l.logger), dataset)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		actx := scoped(gctx, DatasetAirlines)
		airlines, ai, err := l.LoadAirlines(actx)
		if err != nil {
			if err := degrade(actx, &ai, err, "airline codes are shown instead of names"); err != nil {
				return err
			}
			airlines = Lookup{}
		}
		pctx := scoped(gctx, DatasetAirports)
		airports, pi, err := l.LoadAirports(pctx)
		if err != nil {
			if err := degrade(pctx, &pi, err, "airport codes are shown instead of names"); err != nil {
				return err
			}
			airports = Lookup{}
		}
		airlineInfo, airportInfo = ai, pi
		flights, flightsInfo, err = l.LoadFlights(scoped(gctx, DatasetFlights), airlines, airports)
		if err != nil {
			return pkgerrors.WrapResource("load", DatasetFlights, "", err)
		}
		return nil
	})
	g.Go(func() error {
		lctx := scoped(gctx, DatasetLife)
		var err error
		life, lifeInfo, err = l.LoadLife(lctx)
		if err != nil {
			if err := degrade(lctx, &lifeInfo, err, "using built-in sample data"); err != nil {
				return err
			}
			life = FallbackLifeTable()
			lifeInfo.Rows = len(life.Rows)
		}
		return nil
	})
	g.Go(func() error {
		fctx := scoped(gctx, DatasetFood)
		var err error
		food, foodInfo, err = l.LoadFood(fctx)
		if err != nil {
			if err := degrade(fctx, &foodInfo, err, "food dashboard is empty"); err != nil {
				return err
			}
			food = &FoodTable{}
			foodInfo.Rows = 0
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Flights = flights
	snap.Life = life
	snap.Food = food
	snap.Sources = []SourceInfo{flightsInfo, airlineInfo, airportInfo, lifeInfo, foodInfo}

	if airlineInfo.Missing {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("airline lookup %s not found; airline codes are shown instead of names", airlineInfo.Path))
	}
	if airportInfo.Missing {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("airport lookup %s not found; airport codes are shown instead of names", airportInfo.Path))
	}
	if lifeInfo.Missing {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("life expectancy file %s not found; using built-in sample data", lifeInfo.Path))
	}
	if lifeInfo.Skipped > 0 {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("dropped %d life expectancy rows without a valid year", lifeInfo.Skipped))
	}
	if foodInfo.Missing {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("food file %s not found; food dashboard is empty", foodInfo.Path))
	}
	for _, w := range snap.Warnings {
		l.logger.Warn().Str("dir", l.dir).Msg(w)
	}
	sort.Strings(degraded)
	snap.Warnings = append(snap.Warnings, degraded...)

	snap.LoadedAt = l.now()
	l.logger.Info().
		Str("dir", l.dir).
		Int("flights", len(flights.Rows)).
		Int("life_rows", len(life.Rows)).
		Int("food_rows", len(food.Rows)).
		Dur("elapsed", snap.LoadedAt.Sub(start)).
		Msg("Datasets loaded")
	return snap, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
