// Package logging builds the root structured logger for Talon.
//
// The logger is a standard *slog.Logger configured from
// config.LoggingConfig: level, text or JSON handler, and optional call
// site annotation. With redact_ips enabled the handler masks the final
// octet of IPv4 addresses in messages and string attributes, so entity
// IPs do not leave the process intact.
//
// Usage:
//
//	logger, err := logging.New(cfg.Telemetry.Logging, nil)
//	if err != nil {
//	    return err
//	}
//	logger.Info("compile finished", "destinations", n)
package logging
