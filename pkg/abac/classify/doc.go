// Package classify drives per-destination policy compilation: it runs
// the applicability filter over a destination inventory and compiles
// each destination's merged source requirements into bit-string match
// keys.
//
// The pipeline for one destination is
//
//	applicable rules -> collected requirements -> merge -> key bits
//
// and destinations never interact, so the classifier fans the work out
// across a bounded worker pool while policies, entities and the schema
// stay read-only.
package classify
