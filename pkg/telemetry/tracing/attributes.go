package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used across the compile and evaluate paths.
const (
	AttrPolicyCount      = "talon.policy_count"
	AttrDestinationCount = "talon.destination_count"
	AttrRuleCount        = "talon.rule_count"
	AttrSnapshotID       = "talon.snapshot_id"
	AttrEffect           = "talon.effect"
	AttrStage            = "talon.stage"
)

// PolicyCount returns the policy-count span attribute.
func PolicyCount(n int) attribute.KeyValue {
	return attribute.Int(AttrPolicyCount, n)
}

// DestinationCount returns the destination-count span attribute.
func DestinationCount(n int) attribute.KeyValue {
	return attribute.Int(AttrDestinationCount, n)
}

// RuleCount returns the rule-count span attribute.
func RuleCount(n int) attribute.KeyValue {
	return attribute.Int(AttrRuleCount, n)
}

// SnapshotID returns the snapshot-id span attribute.
func SnapshotID(id string) attribute.KeyValue {
	return attribute.String(AttrSnapshotID, id)
}

// Effect returns the decision-effect span attribute.
func Effect(effect string) attribute.KeyValue {
	return attribute.String(AttrEffect, effect)
}

// Stage returns the compile-stage span attribute ("load", "classify",
// "keys", "persist").
func Stage(stage string) attribute.KeyValue {
	return attribute.String(AttrStage, stage)
}
