package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Only the final octet is masked; the subnet stays visible for
// correlating compile runs against network segments.
var ipv4Pattern = regexp.MustCompile(`\b((?:\d{1,3}\.){3})\d{1,3}\b`)

// RedactIPv4 masks the final octet of every IPv4 address in a string.
func RedactIPv4(s string) string {
	return ipv4Pattern.ReplaceAllString(s, "${1}x")
}

// RedactHandler wraps an slog.Handler and masks IPv4 addresses in the
// message and in string attribute values before they reach the sink.
type RedactHandler struct {
	inner slog.Handler
}

// NewRedactHandler wraps a handler with IPv4 redaction.
func NewRedactHandler(inner slog.Handler) *RedactHandler {
	return &RedactHandler{inner: inner}
}

// Enabled reports whether the wrapped handler handles records at the
// given level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle masks IPv4 addresses in the record and forwards it.
func (h *RedactHandler) Handle(ctx context.Context, rec slog.Record) error {
	if !strings.Contains(rec.Message, ".") && rec.NumAttrs() == 0 {
		return h.inner.Handle(ctx, rec)
	}

	out := slog.NewRecord(rec.Time, rec.Level, RedactIPv4(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a new handler whose attributes are redacted before
// being attached.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name)}
}

// redactAttr masks IPv4 addresses in string values, recursing into
// groups. Non-string values pass through untouched.
func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, RedactIPv4(a.Value.String()))
	case slog.KindGroup:
		members := a.Value.Group()
		redacted := make([]any, len(members))
		for i, m := range members {
			redacted[i] = redactAttr(m)
		}
		return slog.Group(a.Key, redacted...)
	default:
		return a
	}
}
