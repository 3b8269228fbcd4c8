package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/datastory/internal/validation"
	"github.com/agentstation/datastory/pkg/constants"
	"github.com/agentstation/datastory/pkg/datasets"
	"github.com/agentstation/datastory/pkg/story"
)

// Config holds the application configuration loaded from flags, the
// environment, .env files and an optional config file.
type Config struct {
	// Global flags
	Verbose  bool   `mapstructure:"verbose"`
	Quiet    bool   `mapstructure:"quiet"`
	NoColor  bool   `mapstructure:"no_color"`
	Format   string `mapstructure:"format" validate:"omitempty,oneof=table wide json yaml"`
	LogLevel string `mapstructure:"-"`

	// Config file
	ConfigFile string `mapstructure:"config"`

	// Data folder from DATA_FOLDER or the config file. The positional
	// argument of a command is kept separately in DataArg.
	DataFolder string `mapstructure:"data_folder"`
	DataArg    string `mapstructure:"-"`

	// Dataset file names
	FlightsFile  string `mapstructure:"flights_file" validate:"required"`
	AirlinesFile string `mapstructure:"airlines_file" validate:"required"`
	AirportsFile string `mapstructure:"airports_file" validate:"required"`
	WHOFile      string `mapstructure:"who_file" validate:"required"`
	FAOFile      string `mapstructure:"fao_file" validate:"required"`

	// Reload on file changes
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce" validate:"gte=0"`

	// Narrative generation
	StoryModel   string `mapstructure:"story_model" validate:"required"`
	GeminiAPIKey string `mapstructure:"-"`

	// Logging configuration. EnvLogLevel comes from LOG_LEVEL or the config
	// file and ranks below the level flags.
	EnvLogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=auto json console"`
	LogOutput   string `mapstructure:"log_output"`
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (./.datastory.yaml or ~/.datastory.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	loadEnvFiles()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	// A missing config file is fine
	_ = v.ReadInConfig()

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),
		DataFolder: v.GetString("data_folder"),

		FlightsFile:  v.GetString("flights_file"),
		AirlinesFile: v.GetString("airlines_file"),
		AirportsFile: v.GetString("airports_file"),
		WHOFile:      v.GetString("who_file"),
		FAOFile:      v.GetString("fao_file"),

		Watch:         v.GetBool("watch"),
		WatchDebounce: v.GetDuration("watch_debounce"),

		StoryModel:   v.GetString("story_model"),
		GeminiAPIKey: firstNonEmpty(v.GetString("gemini_api_key"), v.GetString("google_api_key")),

		EnvLogLevel: strings.ToLower(v.GetString("log_level")),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("flights_file", constants.DefaultFlightsFile)
	v.SetDefault("airlines_file", constants.DefaultAirlinesFile)
	v.SetDefault("airports_file", constants.DefaultAirportsFile)
	v.SetDefault("who_file", constants.DefaultLifeFile)
	v.SetDefault("fao_file", constants.DefaultFoodFile)
	v.SetDefault("watch_debounce", constants.WatchDebounce)
	v.SetDefault("story_model", story.DefaultModel)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// Keys without defaults still need binding for AutomaticEnv lookups
	// through Get.
	for _, key := range []string{"data_folder", "gemini_api_key", "google_api_key", "log_level"} {
		_ = v.BindEnv(key)
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// Files returns the dataset file names.
func (c *Config) Files() datasets.Files {
	return datasets.Files{
		Flights:  c.FlightsFile,
		Airlines: c.AirlinesFile,
		Airports: c.AirportsFile,
		Life:     c.WHOFile,
		Food:     c.FAOFile,
	}
}

// UpdateFromFlags applies parsed global flags. Flag values take precedence
// over the config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. Variables already set in the
// environment are kept.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
