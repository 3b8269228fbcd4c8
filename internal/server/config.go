package server

import (
	"time"

	"github.com/agentstation/datastory/internal/validation"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`

	// API settings
	PathPrefix string `mapstructure:"prefix" validate:"required,startswith=/"`

	// CORS settings
	CORSEnabled bool     `mapstructure:"cors"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Authentication settings
	AuthEnabled bool   `mapstructure:"auth"`
	AuthHeader  string `mapstructure:"auth_header" validate:"required_if=AuthEnabled true"`
	APIKey      string `mapstructure:"api_key" validate:"required_if=AuthEnabled true"`

	// Performance settings
	RateLimit int           `mapstructure:"rate_limit" validate:"gte=0"` // Requests per minute per IP (0 to disable)
	CacheTTL  time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`

	// HTTP timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`

	// Features
	MetricsEnabled bool `mapstructure:"metrics"`
	UIEnabled      bool `mapstructure:"ui"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        8050,
		PathPrefix:  "/api/v1",
		CORSEnabled: false,
		CORSOrigins: []string{},
		AuthEnabled: false,
		AuthHeader:  "X-API-Key",
		RateLimit:   300,
		CacheTTL:    5 * time.Minute,
		ReadTimeout: 10 * time.Second,
		// Story generation may wait on the narrative service
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
		UIEnabled:      true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.Struct(c)
}
