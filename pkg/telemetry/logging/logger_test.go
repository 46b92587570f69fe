package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"osprey-hq/talon/pkg/config"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string // substring of the encoded record
	}{
		{name: "text", format: "text", want: "msg=hello"},
		{name: "json", format: "json", want: `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(config.LoggingConfig{Level: "info", Format: tt.format}, &buf)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			logger.Info("hello")

			if got := buf.String(); !strings.Contains(got, tt.want) {
				t.Errorf("output = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info record written despite warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Error("warn record missing")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Error("New() accepted unknown level")
	}
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Error("New() accepted unknown format")
	}
}

func TestNewRedactsIPs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", RedactIPs: true}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("compiled destination", "dest_ip", "10.1.20.11")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got := rec["dest_ip"]; got != "10.1.20.x" {
		t.Errorf("dest_ip = %v, want %q", got, "10.1.20.x")
	}
}

func TestRedactHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewRedactHandler(inner)).With("source_ip", "10.0.10.21")

	logger.Info("evaluated")

	if got := buf.String(); !strings.Contains(got, "source_ip=10.0.10.x") {
		t.Errorf("output = %q, want redacted source_ip", got)
	}
}
