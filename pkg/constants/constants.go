// Package constants provides shared constants used throughout datastory:
// default dataset file names, timeouts, limits and permissions.
package constants

import "time"

// Dataset file defaults. Each may be overridden through configuration.
const (
	// DefaultDataFolder is used when no folder is given on the command line
	// or in DATA_FOLDER.
	DefaultDataFolder = "data"

	// DefaultFlightsFile is the cleaned 2015 US flights extract.
	DefaultFlightsFile = "dashboard_flights.csv"

	// DefaultAirlinesFile maps IATA airline codes to names.
	DefaultAirlinesFile = "airlines.csv"

	// DefaultAirportsFile maps IATA airport codes to names.
	DefaultAirportsFile = "airports.csv"

	// DefaultLifeFile is the WHO life expectancy extract with the HDI column.
	DefaultLifeFile = "Life Expectancy Data with IDH.csv"

	// DefaultFoodFile is the FAO food balance extract.
	DefaultFoodFile = "FAO.csv"
)

// Timeout constants.
const (
	// DefaultTimeout is the standard timeout for general operations.
	DefaultTimeout = 10 * time.Second

	// LoadTimeout bounds a full dataset (re)load.
	LoadTimeout = 5 * time.Minute

	// NarrativeTimeout bounds one narrative generation including retries.
	NarrativeTimeout = 45 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the CLI.
	ShutdownTimeout = 5 * time.Second

	// WatchDebounce is how long file events settle before a reload.
	WatchDebounce = 750 * time.Millisecond

	// RetryBackoff is the base backoff duration for retries.
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries.
	MaxRetryBackoff = 10 * time.Second
)

// File permission constants.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x).
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--).
	FilePermissions = 0644
)

// Limit constants.
const (
	// MaxRetries is the maximum number of attempts for retried operations.
	MaxRetries = 3

	// DefaultPageSize is the data table page size.
	DefaultPageSize = 10

	// MaxPageSize is the largest data table page a client may request.
	MaxPageSize = 500

	// ChannelBufferSize is the default buffer size for event channels.
	ChannelBufferSize = 256
)

// Server defaults.
const (
	// DefaultPort is the HTTP port of the dashboard server.
	DefaultPort = 8050

	// DefaultHost is the interface the server binds to.
	DefaultHost = "localhost"

	// DefaultPathPrefix is the API route prefix.
	DefaultPathPrefix = "/api/v1"

	// CacheTTL is the default time-to-live for cached responses.
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often expired cache entries are purged.
	CacheCleanupInterval = 10 * time.Minute

	// DefaultRateLimit is the default requests per minute per client IP.
	DefaultRateLimit = 300
)

// Path constants.
const (
	// DefaultConfigName is the config file base name looked up in the
	// working directory and the home directory.
	DefaultConfigName = ".datastory"
)

// Format constants.
const (
	// DateLayout is the calendar date layout used in API payloads.
	DateLayout = "2006-01-02"

	// TimeFormatFilename is the format used in generated filenames.
	TimeFormatFilename = "20060102-150405"
)
