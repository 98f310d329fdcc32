package config

import (
	"fmt"
)

// ObservabilityConfig groups all configuration related to telemetry and runtime visibility.
//
// It is optional at the root level (pointer in Config). If omitted, defaults are injected.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs/traces/APM dashboards.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment is a label used to split telemetry by environment.
	Environment string `koanf:"environment" validate:"required"`

	// Logging config controls structured logger behavior.
	Logging LoggingConfig `koanf:"logging" validate:"required"`

	// NewRelic config controls APM and tracing features.
	NewRelic NewRelicConfig `koanf:"new_relic"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format selects the output format for logs ("json" or "console").
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
//
// An empty LicenseKey disables the agent entirely.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// Enabled reports whether a New Relic application should be started.
func (c NewRelicConfig) Enabled() bool {
	return c.LicenseKey != ""
}

// DefaultObservabilityConfig provides a safe set of defaults.
//
// Used when Config.Observability is nil (nothing observability related was set).
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "",
			Format: "",
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // mixed log formats otherwise
		},
	}
}

// applyDefaults fills the fields a partial environment left empty.
func (c *ObservabilityConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = c.defaultLevel()
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *ObservabilityConfig) defaultLevel() string {
	if c.Environment == "development" {
		return "debug"
	}
	return "info"
}

// Validate applies custom validation rules that go beyond struct tags.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime.
//
// In production it defaults to "info", in development to "debug";
// otherwise whatever c.Logging.Level is set to.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level == "" {
		return c.defaultLevel()
	}
	return c.Logging.Level
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
