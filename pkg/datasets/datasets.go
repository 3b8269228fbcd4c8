// Package datasets loads the three public datasets behind the dashboards
// (2015 US flights, WHO life expectancy, FAO food balance) from a data
// folder and cleans them into typed in-memory tables.
//
// Loading goes through an afero filesystem so tests and embedders can supply
// an in-memory folder. Absent numeric measurements are NaN; absent dates are
// the zero time.
package datasets

import (
	"path/filepath"
	"time"

	"github.com/agentstation/datastory/pkg/constants"
)

// Files names the CSV files inside the data folder.
type Files struct {
	Flights  string `json:"flights" yaml:"flights"`
	Airlines string `json:"airlines" yaml:"airlines"`
	Airports string `json:"airports" yaml:"airports"`
	Life     string `json:"life" yaml:"life"`
	Food     string `json:"food" yaml:"food"`
}

// DefaultFiles returns the file names the datasets are published under.
func DefaultFiles() Files {
	return Files{
		Flights:  constants.DefaultFlightsFile,
		Airlines: constants.DefaultAirlinesFile,
		Airports: constants.DefaultAirportsFile,
		Life:     constants.DefaultLifeFile,
		Food:     constants.DefaultFoodFile,
	}
}

// WithDefaults fills empty names from DefaultFiles.
func (f Files) WithDefaults() Files {
	d := DefaultFiles()
	if f.Flights == "" {
		f.Flights = d.Flights
	}
	if f.Airlines == "" {
		f.Airlines = d.Airlines
	}
	if f.Airports == "" {
		f.Airports = d.Airports
	}
	if f.Life == "" {
		f.Life = d.Life
	}
	if f.Food == "" {
		f.Food = d.Food
	}
	return f
}

// Names returns every configured file name, flights first.
func (f Files) Names() []string {
	return []string{f.Flights, f.Airlines, f.Airports, f.Life, f.Food}
}

// Contains reports whether name (a base name or a path) is one of the files.
func (f Files) Contains(name string) bool {
	base := filepath.Base(name)
	for _, n := range f.Names() {
		if n == base {
			return true
		}
	}
	return false
}

// SourceInfo describes one file that went into a snapshot.
type SourceInfo struct {
	Dataset string `json:"dataset" yaml:"dataset"`
	Path    string `json:"path" yaml:"path"`
	Rows    int    `json:"rows" yaml:"rows"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Missing bool   `json:"missing" yaml:"missing"`
	// Error is set when an optional file exists but could not be read.
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
	ModTime time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
}

// Snapshot is a consistent, immutable set of loaded datasets. Consumers must
// not modify the tables it points to.
type Snapshot struct {
	Flights  *FlightTable `json:"-" yaml:"-"`
	Life     *LifeTable   `json:"-" yaml:"-"`
	Food     *FoodTable   `json:"-" yaml:"-"`
	LoadedAt time.Time    `json:"loaded_at" yaml:"loaded_at"`
	Dir      string       `json:"dir" yaml:"dir"`
	Sources  []SourceInfo `json:"sources" yaml:"sources"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Source returns the SourceInfo recorded for dataset, if any.
func (s *Snapshot) Source(dataset string) (SourceInfo, bool) {
	for _, src := range s.Sources {
		if src.Dataset == dataset {
			return src, true
		}
	}
	return SourceInfo{}, false
}

// Dataset names used in SourceInfo and log fields.
const (
	DatasetFlights  = "flights"
	DatasetAirlines = "airlines"
	DatasetAirports = "airports"
	DatasetLife     = "life_expectancy"
	DatasetFood     = "food"
)
