package config

import "time"

// Config is the root configuration structure for Talon. It covers the
// policy/entity/schema data sources, the key-compilation parameters, the
// compiler service, the snapshot and inventory stores, and telemetry.
type Config struct {
	// Data locates the policy, entity, and schema inputs on disk.
	Data DataConfig `yaml:"data"`

	// Key contains the key-compilation parameters: the attribute slot
	// order and the trust-score threshold ladder.
	Key KeyConfig `yaml:"key"`

	// Parser tunes the document parser (size and depth limits, strict
	// mode).
	Parser ParserConfig `yaml:"parser"`

	// Compiler configures the recompilation service: worker count, file
	// watching, and the periodic schedule.
	Compiler CompilerConfig `yaml:"compiler"`

	// Snapshot configures the compiled-snapshot store.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Inventory configures the entity inventory store.
	Inventory InventoryConfig `yaml:"inventory"`

	// Telemetry contains configuration for observability including
	// logging, metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DataConfig locates the compiler's inputs.
type DataConfig struct {
	// PoliciesDir is a directory of policy documents. Files load in
	// lexical order; policy order is evaluation order.
	PoliciesDir string `yaml:"policies_dir"`

	// EntitiesFile is the entity inventory document.
	EntitiesFile string `yaml:"entities_file"`

	// SchemaFile is the attribute identifier schema document.
	SchemaFile string `yaml:"schema_file"`
}

// KeyConfig carries the key-compilation parameters. AttrOrder fixes the
// slot order of the compiled bit keys; TrustThresholds is the ordered
// bucket ladder for Src.TrustScore requirements.
type KeyConfig struct {
	AttrOrder       []string `yaml:"attr_order"`
	TrustThresholds []int64  `yaml:"trust_thresholds"`
}

// ParserConfig tunes the document parser.
type ParserConfig struct {
	// MaxFileSize bounds a single input document, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth bounds condition/expression nesting.
	MaxDepth int `yaml:"max_depth"`

	// Strict rejects unknown fields in input documents.
	Strict bool `yaml:"strict"`
}

// CompilerConfig configures the recompilation service.
type CompilerConfig struct {
	// Workers bounds how many destinations compile concurrently.
	// Zero means one worker per logical CPU.
	Workers int `yaml:"workers"`

	// Watch recompiles when a watched input file changes.
	Watch bool `yaml:"watch"`

	// WatchDebounce coalesces bursts of file events into one recompile.
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Schedule is an optional cron expression for periodic recompiles
	// (standard five-field form). Empty disables the scheduler.
	Schedule string `yaml:"schedule"`
}

// SnapshotConfig configures the compiled-snapshot store.
type SnapshotConfig struct {
	// Enabled persists every successful compile as a snapshot.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file for the snapshot store.
	Path string `yaml:"path"`

	// Keep bounds how many snapshots Prune retains. Zero keeps all.
	Keep int `yaml:"keep"`
}

// InventoryConfig configures the entity inventory store.
type InventoryConfig struct {
	// Enabled turns the SQLite-backed inventory on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file for the inventory.
	Path string `yaml:"path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format selects the handler: "text" or "json".
	Format string `yaml:"format"`

	// AddSource annotates records with file:line of the call site.
	AddSource bool `yaml:"add_source"`

	// RedactIPs masks the final octet of IPv4 addresses in log output,
	// for sinks shared outside the network team.
	RedactIPs bool `yaml:"redact_ips"`
}

// MetricsConfig configures the Prometheus metrics endpoint served by
// `talon run`.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
	Path          string `yaml:"path"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	Endpoint string `yaml:"endpoint"`

	// Insecure disables transport security toward the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the trace sampling ratio in [0.0, 1.0].
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName identifies this process in trace backends.
	ServiceName string `yaml:"service_name"`
}
