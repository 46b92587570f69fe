package snapshot

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"osprey-hq/talon/pkg/abac/classify"
)

func TestJSONExport(t *testing.T) {
	snap := newTestSnapshot(t)
	var buf bytes.Buffer

	if err := NewJSONExporter(false).Export(context.Background(), snap, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got jsonSnapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("exported ID = %q, want %q", got.ID, snap.ID)
	}
	if got.Digest != snap.Digest {
		t.Errorf("exported digest = %q, want %q", got.Digest, snap.Digest)
	}
	if len(got.Keys) != 2 || len(got.Rules) != 2 {
		t.Errorf("exported keys/rules = %d/%d, want 2/2", len(got.Keys), len(got.Rules))
	}
	if want := "core/r-server-faculty"; got.Rules[0].Rules[0] != want {
		t.Errorf("exported rule ref = %q, want %q", got.Rules[0].Rules[0], want)
	}
}

func TestCSVExport(t *testing.T) {
	snap := newTestSnapshot(t)
	var buf bytes.Buffer

	if err := NewCSVExporter(true).Export(context.Background(), snap, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}

	// Header plus three attributes per destination.
	if len(rows) != 7 {
		t.Fatalf("CSV rows = %d, want 7", len(rows))
	}
	if rows[0][1] != "dest_ip" || rows[0][3] != "bits" {
		t.Errorf("CSV header = %v", rows[0])
	}

	// Attributes within a destination are sorted.
	if rows[1][2] != "Src.Dept" || rows[2][2] != "Src.Role" || rows[3][2] != "Src.TrustScore" {
		t.Errorf("CSV attr order = [%s %s %s], want sorted", rows[1][2], rows[2][2], rows[3][2])
	}
	if rows[1][4] != "true" {
		t.Errorf("trust_threshold_key = %q, want %q", rows[1][4], "true")
	}
	if rows[4][4] != "false" {
		t.Errorf("trust_threshold_key = %q, want %q", rows[4][4], "false")
	}
}

func TestCSVExportStream(t *testing.T) {
	snap := newTestSnapshot(t)
	keys := make(chan classify.DestinationKey, len(snap.Keys))
	for _, key := range snap.Keys {
		keys <- key
	}
	close(keys)

	var buf bytes.Buffer
	if err := NewCSVExporter(true).ExportStream(context.Background(), snap.ID, keys, &buf); err != nil {
		t.Fatalf("ExportStream() error = %v", err)
	}

	var direct bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), snap, &direct); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if buf.String() != direct.String() {
		t.Error("ExportStream() output differs from Export()")
	}
}

func TestCSVExportStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	keys := make(chan classify.DestinationKey)
	err := NewCSVExporter(false).ExportStream(ctx, "snap-000", keys, io.Discard)
	if err != context.Canceled {
		t.Errorf("ExportStream() error = %v, want context.Canceled", err)
	}
}

func TestCBORExportRoundTrip(t *testing.T) {
	snap := newTestSnapshot(t)
	var buf bytes.Buffer

	if err := NewCBORExporter().Export(context.Background(), snap, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Digest != snap.Digest {
		t.Errorf("round-trip digest = %q, want %q", got.Digest, snap.Digest)
	}
}

func TestNewExporter(t *testing.T) {
	for _, format := range []string{"json", "csv", "cbor"} {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q) error = %v", format, err)
		}
	}

	if _, err := NewExporter("xml"); err == nil {
		t.Error("NewExporter(\"xml\") error = nil, want unknown format error")
	}
}

func TestCompressWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wc, err := CompressWriter(&buf, true)
	if err != nil {
		t.Fatalf("CompressWriter() error = %v", err)
	}

	payload := strings.Repeat("destination key bits 01010101 ", 200)
	if _, err := io.WriteString(wc, payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() >= len(payload) {
		t.Errorf("compressed size = %d, want < %d", buf.Len(), len(payload))
	}

	rc, err := DecompressReader(&buf)
	if err != nil {
		t.Fatalf("DecompressReader() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != payload {
		t.Error("decompressed payload does not match original")
	}
}

func TestCompressWriterDisabled(t *testing.T) {
	var buf bytes.Buffer
	wc, err := CompressWriter(&buf, false)
	if err != nil {
		t.Fatalf("CompressWriter() error = %v", err)
	}

	if _, err := io.WriteString(wc, "plain"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if buf.String() != "plain" {
		t.Errorf("pass-through output = %q, want %q", buf.String(), "plain")
	}
}
