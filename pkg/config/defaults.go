package config

import "time"

// Default values for configuration fields.
const (
	// Data defaults
	DefaultPoliciesDir  = "./policies"
	DefaultEntitiesFile = "./entities.json"
	DefaultSchemaFile   = "./schema.json"

	// Parser defaults
	DefaultParserMaxFileSize = int64(10 * 1024 * 1024) // 10MB
	DefaultParserMaxDepth    = 32

	// Compiler defaults
	DefaultCompilerWatchDebounce = 500 * time.Millisecond

	// Snapshot defaults
	DefaultSnapshotPath = "data/snapshots.db"
	DefaultSnapshotKeep = 20

	// Inventory defaults
	DefaultInventoryPath = "data/inventory.db"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultTracingEndpoint      = "127.0.0.1:4317"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingServiceName   = "talon"
)

// DefaultAttrOrder returns the default key slot order. It covers every
// source attribute the key compiler assigns a slot to; the trailing
// threshold slot is always appended after these.
func DefaultAttrOrder() []string {
	return []string{"Src.Role", "Src.Dept", "Src.Groups", "Src.TrustScore"}
}

// DefaultTrustThresholds returns the default trust-score bucket ladder.
func DefaultTrustThresholds() []int64 {
	return []int64{0, 25, 50, 75, 90}
}

// ApplyDefaults fills in default values for any configuration fields that
// are zero-valued. It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Data.PoliciesDir == "" {
		cfg.Data.PoliciesDir = DefaultPoliciesDir
	}
	if cfg.Data.EntitiesFile == "" {
		cfg.Data.EntitiesFile = DefaultEntitiesFile
	}
	if cfg.Data.SchemaFile == "" {
		cfg.Data.SchemaFile = DefaultSchemaFile
	}

	if len(cfg.Key.AttrOrder) == 0 {
		cfg.Key.AttrOrder = DefaultAttrOrder()
	}
	if len(cfg.Key.TrustThresholds) == 0 {
		cfg.Key.TrustThresholds = DefaultTrustThresholds()
	}

	if cfg.Parser.MaxFileSize == 0 {
		cfg.Parser.MaxFileSize = DefaultParserMaxFileSize
	}
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = DefaultParserMaxDepth
	}

	if cfg.Compiler.WatchDebounce == 0 {
		cfg.Compiler.WatchDebounce = DefaultCompilerWatchDebounce
	}

	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = DefaultSnapshotPath
	}
	if cfg.Snapshot.Keep == 0 {
		cfg.Snapshot.Keep = DefaultSnapshotKeep
	}

	if cfg.Inventory.Path == "" {
		cfg.Inventory.Path = DefaultInventoryPath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

// NewDefaultConfig returns a configuration populated entirely with
// default values.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
