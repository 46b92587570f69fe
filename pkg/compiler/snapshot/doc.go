// Package snapshot defines the compiled-artifact form of a policy
// compile run and its persistence and export surfaces.
//
// A Snapshot bundles every destination's requirement key and
// applicable-rule list with the compile parameters, sealed by a BLAKE3
// digest over the snapshot's canonical CBOR encoding. Store keeps
// snapshots in SQLite (one metadata row plus queryable per-attribute
// key rows); the exporters render a snapshot as JSON, CSV, or raw
// CBOR, optionally zstd-compressed via CompressWriter.
package snapshot
