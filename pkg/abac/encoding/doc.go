// Package encoding turns schema-resolved attribute values and merged
// source requirements into fixed-width bit strings.
//
// Every 32-bit word is rendered most-significant-bit first via
// BitString. Categorical attributes occupy one word each: a value's id
// selects a bit, and a requirement key ORs the bits of every allowed
// value, with the all-zero word meaning unconstrained. Numeric
// trust-score bounds do not fit that shape; they are projected onto a
// caller-supplied threshold ladder and carried in one extra word at the
// end of the key, signalled by KeySemantics.UseTrustScoreThreshold.
//
// A compiled requirement key therefore has 32*(len(attrOrder)+1) bits
// in its concatenated form. The per-attribute form maps each name to
// its word and adds the "Src.TrustScore.Threshold" entry only when the
// threshold path is in use.
package encoding
