// Package config provides configuration management for Talon.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TALON_SECTION_FIELD.
// For example:
//
//   - TALON_DATA_POLICIES_DIR overrides data.policies_dir
//   - TALON_COMPILER_WATCH overrides compiler.watch
//   - TALON_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later
// overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	data:
//	  policies_dir: "./examples/data/policies"
//	  entities_file: "./examples/data/entities.json"
//	  schema_file: "./examples/data/schema.json"
//
//	key:
//	  attr_order: ["Src.Role", "Src.Dept", "Src.Groups", "Src.TrustScore"]
//	  trust_thresholds: [0, 25, 50, 75, 90]
//
//	compiler:
//	  watch: true
//	  schedule: "0 3 * * *"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
