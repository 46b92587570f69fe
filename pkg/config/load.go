package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention TALON_SECTION_FIELD (e.g., TALON_DATA_POLICIES_DIR).
// Environment variables always take precedence over file-based
// configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format TALON_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Data overrides
	if val := os.Getenv("TALON_DATA_POLICIES_DIR"); val != "" {
		cfg.Data.PoliciesDir = val
	}
	if val := os.Getenv("TALON_DATA_ENTITIES_FILE"); val != "" {
		cfg.Data.EntitiesFile = val
	}
	if val := os.Getenv("TALON_DATA_SCHEMA_FILE"); val != "" {
		cfg.Data.SchemaFile = val
	}

	// Compiler overrides
	if val := os.Getenv("TALON_COMPILER_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Compiler.Workers = i
		}
	}
	if val := os.Getenv("TALON_COMPILER_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Compiler.Watch = b
		}
	}
	if val := os.Getenv("TALON_COMPILER_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Compiler.WatchDebounce = d
		}
	}
	if val := os.Getenv("TALON_COMPILER_SCHEDULE"); val != "" {
		cfg.Compiler.Schedule = val
	}

	// Snapshot overrides
	if val := os.Getenv("TALON_SNAPSHOT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Snapshot.Enabled = b
		}
	}
	if val := os.Getenv("TALON_SNAPSHOT_PATH"); val != "" {
		cfg.Snapshot.Path = val
	}
	if val := os.Getenv("TALON_SNAPSHOT_KEEP"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Snapshot.Keep = i
		}
	}

	// Inventory overrides
	if val := os.Getenv("TALON_INVENTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Inventory.Enabled = b
		}
	}
	if val := os.Getenv("TALON_INVENTORY_PATH"); val != "" {
		cfg.Inventory.Path = val
	}

	// Telemetry overrides
	if val := os.Getenv("TALON_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TALON_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TALON_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("TALON_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("TALON_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("TALON_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("TALON_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("TALON_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
