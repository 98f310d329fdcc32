// Package config manages environment variables.
//
// It reads variables from the process environment (and from a `.env`
// file when one exists), loads them into structured Go types and
// validates them so the rest of the service can treat the result as
// immutable, read-only configuration.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate values so the app fails fast on bad config.
//   - Provide defaults for everything that is optional.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/bytes"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	CORS          CORSPolicy           `koanf:"cors" validate:"required"`
	Calculate     CalculateConfig      `koanf:"calculate"`
	Health        HealthConfig         `koanf:"health" validate:"required"`
	Metrics       MetricsConfig        `koanf:"metrics"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// It is only used to tag logs and to pick the log format.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port            string `koanf:"port" validate:"required,numeric"`
	ReadTimeout     int    `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    int    `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     int    `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout int    `koanf:"shutdown_timeout" validate:"gte=0"`

	// BodyLimit is the maximum accepted size of a parsed request body,
	// written in the "10MiB" / "512KB" notation.
	BodyLimit string `koanf:"body_limit" validate:"required"`
}

// BodyLimitBytes parses BodyLimit into a byte count.
func (s ServerConfig) BodyLimitBytes() (int64, error) {
	limit, err := bytes.Parse(s.BodyLimit)
	if err != nil {
		return 0, fmt.Errorf("invalid body limit %q: %w", s.BodyLimit, err)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("invalid body limit %q: must be positive", s.BodyLimit)
	}
	return limit, nil
}

// CORSPolicy is computed once at startup and applied uniformly to every request.
//
// Only the allowed origins come from the environment; methods, headers and
// the credentials flag are fixed for this service.
type CORSPolicy struct {
	AllowOrigins     []string `koanf:"allow_origins" validate:"required,min=1,dive,required"`
	AllowMethods     []string `koanf:"allow_methods" validate:"required,min=1"`
	AllowHeaders     []string `koanf:"allow_headers" validate:"required,min=1"`
	AllowCredentials bool     `koanf:"allow_credentials"`
}

// AllowsAll reports whether the policy accepts any origin.
func (p CORSPolicy) AllowsAll() bool {
	for _, origin := range p.AllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// CalculateConfig controls the calculation route group.
//
// RateLimit is in requests per second per client IP; 0 disables limiting.
type CalculateConfig struct {
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`
}

// HealthConfig lists the logical subsystems reported by the health endpoint.
// They are reported as operational without any live probing.
type HealthConfig struct {
	Services []string `koanf:"services" validate:"required,min=1"`
}

// MetricsConfig controls the optional Prometheus listener.
// An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

const (
	// DefaultPort is used when PORT is not set.
	DefaultPort = "3000"

	// DefaultBodyLimit is the 10 MiB (10,485,760 bytes) ceiling of the JSON
	// and form parsers. A bare "M" would be decimal.
	DefaultBodyLimit = "10MiB"

	// ServiceName tags logs, traces and metrics.
	ServiceName = "sage-calculator-api"
)

// envKeys maps the process environment onto koanf key paths.
// Variables that are not listed here are ignored.
var envKeys = map[string]string{
	"PORT":                          "server.port",
	"READ_TIMEOUT":                  "server.read_timeout",
	"WRITE_TIMEOUT":                 "server.write_timeout",
	"IDLE_TIMEOUT":                  "server.idle_timeout",
	"SHUTDOWN_TIMEOUT":              "server.shutdown_timeout",
	"BODY_LIMIT":                    "server.body_limit",
	"ALLOWED_ORIGINS":               "cors.allow_origins",
	"APP_ENV":                       "primary.env",
	"NODE_ENV":                      "primary.env",
	"CALCULATE_RATE_LIMIT":          "calculate.rate_limit",
	"CALCULATE_RATE_BURST":          "calculate.rate_burst",
	"METRICS_ADDR":                  "metrics.addr",
	"LOG_LEVEL":                     "observability.logging.level",
	"LOG_FORMAT":                    "observability.logging.format",
	"NEW_RELIC_LICENSE_KEY":         "observability.new_relic.license_key",
	"NEW_RELIC_APP_LOG_FORWARDING":  "observability.new_relic.app_log_forwarding_enabled",
	"NEW_RELIC_DISTRIBUTED_TRACING": "observability.new_relic.distributed_tracing_enabled",
	"NEW_RELIC_DEBUG_LOGGING":       "observability.new_relic.debug_logging",
}

// DefaultConfig returns the configuration used when no variable is set.
// Allowed origins are left empty on purpose: LoadConfig turns an absent
// ALLOWED_ORIGINS into the wildcard.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 5,
			BodyLimit:       DefaultBodyLimit,
		},
		CORS: CORSPolicy{
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
		},
		Health: HealthConfig{
			Services: []string{"ephemeris", "geocoding", "human_design_engine"},
		},
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it on
// top of DefaultConfig, validates it and returns the resulting config.
//
// Behavior summary:
//   - Reads the variables listed in envKeys (ALLOWED_ORIGINS is split on commas)
//   - Unmarshals into Config
//   - Falls back to the "*" origin when ALLOWED_ORIGINS is absent
//   - Injects and validates observability defaults
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		path, ok := envKeys[key]
		if !ok || strings.TrimSpace(value) == "" {
			return "", nil
		}
		// APP_ENV wins over the legacy NODE_ENV.
		if key == "NODE_ENV" && strings.TrimSpace(os.Getenv("APP_ENV")) != "" {
			return "", nil
		}
		if key == "ALLOWED_ORIGINS" {
			return path, SplitOrigins(value)
		}
		return path, strings.TrimSpace(value)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()

	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if len(mainConfig.CORS.AllowOrigins) == 0 {
		mainConfig.CORS.AllowOrigins = []string{"*"}
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are always derived, never configured.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env
	mainConfig.Observability.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if _, err := mainConfig.Server.BodyLimitBytes(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return mainConfig, nil
}

// SplitOrigins turns the comma-separated ALLOWED_ORIGINS value into a list,
// dropping blank entries.
func SplitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
