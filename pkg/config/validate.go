package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g.,
	// "telemetry.logging.level").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. It returns nil if the
// configuration is valid. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateData(&cfg.Data)...)
	errs = append(errs, validateKey(&cfg.Key)...)
	errs = append(errs, validateParser(&cfg.Parser)...)
	errs = append(errs, validateCompiler(&cfg.Compiler)...)
	errs = append(errs, validateSnapshot(&cfg.Snapshot)...)
	errs = append(errs, validateInventory(&cfg.Inventory)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateData(data *DataConfig) []FieldError {
	var errs []FieldError
	if data.PoliciesDir == "" {
		errs = append(errs, FieldError{Field: "data.policies_dir", Message: "field is required"})
	}
	if data.EntitiesFile == "" {
		errs = append(errs, FieldError{Field: "data.entities_file", Message: "field is required"})
	}
	if data.SchemaFile == "" {
		errs = append(errs, FieldError{Field: "data.schema_file", Message: "field is required"})
	}
	return errs
}

func validateKey(key *KeyConfig) []FieldError {
	var errs []FieldError

	if len(key.AttrOrder) == 0 {
		errs = append(errs, FieldError{Field: "key.attr_order", Message: "at least one attribute is required"})
	}
	seen := make(map[string]bool, len(key.AttrOrder))
	for i, attr := range key.AttrOrder {
		field := fmt.Sprintf("key.attr_order[%d]", i)
		if !strings.HasPrefix(attr, "Src.") {
			errs = append(errs, FieldError{Field: field,
				Message: fmt.Sprintf("key slots hold source attributes; %q does not begin with \"Src.\"", attr)})
		}
		if seen[attr] {
			errs = append(errs, FieldError{Field: field,
				Message: fmt.Sprintf("duplicate attribute %q", attr)})
		}
		seen[attr] = true
	}

	if len(key.TrustThresholds) > 32 {
		errs = append(errs, FieldError{Field: "key.trust_thresholds",
			Message: fmt.Sprintf("at most 32 thresholds fit one key word, got %d", len(key.TrustThresholds))})
	}
	for i := 1; i < len(key.TrustThresholds); i++ {
		if key.TrustThresholds[i] <= key.TrustThresholds[i-1] {
			errs = append(errs, FieldError{Field: fmt.Sprintf("key.trust_thresholds[%d]", i),
				Message: "thresholds must be strictly ascending"})
			break
		}
	}

	return errs
}

func validateParser(p *ParserConfig) []FieldError {
	var errs []FieldError
	if p.MaxFileSize < 0 {
		errs = append(errs, FieldError{Field: "parser.max_file_size", Message: "must not be negative"})
	}
	if p.MaxDepth < 0 {
		errs = append(errs, FieldError{Field: "parser.max_depth", Message: "must not be negative"})
	}
	return errs
}

func validateCompiler(c *CompilerConfig) []FieldError {
	var errs []FieldError
	if c.Workers < 0 {
		errs = append(errs, FieldError{Field: "compiler.workers", Message: "must not be negative"})
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, FieldError{Field: "compiler.watch_debounce", Message: "must not be negative"})
	}
	if c.Schedule != "" && len(strings.Fields(c.Schedule)) != 5 {
		errs = append(errs, FieldError{Field: "compiler.schedule",
			Message: "must be a standard five-field cron expression"})
	}
	return errs
}

func validateSnapshot(s *SnapshotConfig) []FieldError {
	var errs []FieldError
	if s.Enabled && s.Path == "" {
		errs = append(errs, FieldError{Field: "snapshot.path", Message: "field is required when snapshots are enabled"})
	}
	if s.Keep < 0 {
		errs = append(errs, FieldError{Field: "snapshot.keep", Message: "must not be negative"})
	}
	return errs
}

func validateInventory(inv *InventoryConfig) []FieldError {
	var errs []FieldError
	if inv.Enabled && inv.Path == "" {
		errs = append(errs, FieldError{Field: "inventory.path", Message: "field is required when the inventory is enabled"})
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", t.Logging.Level)})
	}
	switch t.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{Field: "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of: text, json (got %q)", t.Logging.Format)})
	}

	if t.Metrics.Enabled {
		if t.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address",
				Message: "field is required when metrics are enabled"})
		}
		if t.Metrics.Path == "" || !strings.HasPrefix(t.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path",
				Message: "must be an absolute URL path"})
		}
	}

	if t.Tracing.Enabled && t.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint",
			Message: "field is required when tracing is enabled"})
	}
	if t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("must be between 0.0 and 1.0 (got %g)", t.Tracing.SampleRatio)})
	}

	return errs
}
