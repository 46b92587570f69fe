package snapshot

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"osprey-hq/talon/pkg/abac/classify"
)

// Exporter writes a snapshot to an output stream in one format.
type Exporter interface {
	Export(ctx context.Context, snap *Snapshot, w io.Writer) error
}

// JSONExporter exports snapshots as JSON.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// jsonSnapshot is the export form of a snapshot. The in-memory struct
// has no JSON tags; the export names match the sqlite column names so
// the two surfaces agree.
type jsonSnapshot struct {
	ID              string      `json:"id"`
	CreatedAt       string      `json:"created_at"`
	Digest          string      `json:"digest"`
	PolicyNames     []string    `json:"policy_names"`
	AttrOrder       []string    `json:"attr_order"`
	TrustThresholds []int64     `json:"trust_thresholds"`
	Keys            []jsonKey   `json:"keys"`
	Rules           []jsonRules `json:"rules"`
}

type jsonKey struct {
	DestinationIP     string            `json:"dest_ip"`
	Bits              map[string]string `json:"bits"`
	TrustThresholdKey bool              `json:"trust_threshold_key"`
}

type jsonRules struct {
	DestinationIP string   `json:"dest_ip"`
	Rules         []string `json:"rules"`
}

// Export writes the snapshot to w as a JSON object.
func (e *JSONExporter) Export(ctx context.Context, snap *Snapshot, w io.Writer) error {
	out := jsonSnapshot{
		ID:              snap.ID,
		CreatedAt:       snap.CreatedAt.UTC().Format(time.RFC3339Nano),
		Digest:          snap.Digest,
		PolicyNames:     snap.PolicyNames,
		AttrOrder:       snap.AttrOrder,
		TrustThresholds: snap.TrustThresholds,
		Keys:            make([]jsonKey, 0, len(snap.Keys)),
		Rules:           make([]jsonRules, 0, len(snap.Rules)),
	}

	for _, key := range snap.Keys {
		out.Keys = append(out.Keys, jsonKey{
			DestinationIP:     key.DestinationIP,
			Bits:              key.Bits,
			TrustThresholdKey: key.Semantics.UseTrustScoreThreshold,
		})
	}
	for _, dr := range snap.Rules {
		refs := make([]string, 0, len(dr.Rules))
		for _, ref := range dr.Rules {
			refs = append(refs, ref.Policy+"/"+ref.RuleID)
		}
		out.Rules = append(out.Rules, jsonRules{DestinationIP: dr.DestinationIP, Rules: refs})
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return NewExportError("json", err)
	}

	if _, err := w.Write(data); err != nil {
		return NewExportError("json", err)
	}
	return nil
}

// CSVExporter exports a snapshot's destination keys as CSV, one row
// per destination and attribute.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{"snapshot_id", "dest_ip", "attr", "bits", "trust_threshold_key"}

// Export writes the snapshot's destination keys to w in CSV format.
// Attributes within one destination are written in sorted order so
// the output is reproducible.
func (e *CSVExporter) Export(ctx context.Context, snap *Snapshot, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return NewExportError("csv", err)
		}
	}

	for _, key := range snap.Keys {
		for _, row := range keyRows(snap.ID, key) {
			if err := writer.Write(row); err != nil {
				return NewExportError("csv", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError("csv", err)
	}
	return nil
}

// ExportStream writes destination keys from a channel to w in CSV
// format. Use this for very large inventories where the key list
// should not be held in memory.
func (e *CSVExporter) ExportStream(ctx context.Context, snapshotID string, keys <-chan classify.DestinationKey, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return NewExportError("csv", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case key, ok := <-keys:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return NewExportError("csv", err)
				}
				return nil
			}
			for _, row := range keyRows(snapshotID, key) {
				if err := writer.Write(row); err != nil {
					return NewExportError("csv", err)
				}
			}
		}
	}
}

// keyRows flattens one destination key into CSV rows, attributes in
// sorted order.
func keyRows(snapshotID string, key classify.DestinationKey) [][]string {
	attrs := make([]string, 0, len(key.Bits))
	for attr := range key.Bits {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	rows := make([][]string, 0, len(attrs))
	for _, attr := range attrs {
		rows = append(rows, []string{
			snapshotID,
			key.DestinationIP,
			attr,
			key.Bits[attr],
			fmt.Sprintf("%t", key.Semantics.UseTrustScoreThreshold),
		})
	}
	return rows
}

// CBORExporter exports the snapshot in its canonical binary form, the
// same bytes the digest covers plus the digest field itself.
type CBORExporter struct{}

// NewCBORExporter creates a new CBOR exporter.
func NewCBORExporter() *CBORExporter {
	return &CBORExporter{}
}

// Export writes the canonical CBOR encoding of the snapshot to w.
func (e *CBORExporter) Export(ctx context.Context, snap *Snapshot, w io.Writer) error {
	data, err := Encode(snap)
	if err != nil {
		return NewExportError("cbor", err)
	}
	if _, err := w.Write(data); err != nil {
		return NewExportError("cbor", err)
	}
	return nil
}

// NewExporter returns the exporter for a format name: "json",
// "csv", or "cbor".
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(true), nil
	case "csv":
		return NewCSVExporter(true), nil
	case "cbor":
		return NewCBORExporter(), nil
	default:
		return nil, NewExportError(format, fmt.Errorf("unknown export format"))
	}
}
