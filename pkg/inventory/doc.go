// Package inventory persists the entity inventory in SQLite.
//
// Each source and destination entity is one row keyed by IP, with its
// attributes stored as the entity file format's JSON object. Reads
// rebuild entities through the entity parser, so a row whose
// attribute keys or value shapes have drifted from the closed key
// vocabulary fails loudly. EntitySource exposes the store to the
// compiler in place of an entity file.
package inventory
