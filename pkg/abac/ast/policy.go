package ast

import "fmt"

// Effect is the outcome a rule or policy produces.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Valid reports whether the effect is one of the declared constants.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDeny
}

// ParseEffect converts a wire string into an Effect.
func ParseEffect(s string) (Effect, error) {
	e := Effect(s)
	if !e.Valid() {
		return "", fmt.Errorf("invalid effect %q (want %q or %q)", s, EffectAllow, EffectDeny)
	}
	return e, nil
}

// Rule pairs a condition with the effect produced when it matches.
type Rule struct {
	ID          string
	Description string
	Effect      Effect
	Condition   Condition
}

// Policy is an ordered rule list with a default effect. Rule order is
// significant: evaluation stops at the first matching rule.
type Policy struct {
	Name          string
	Description   string
	DefaultEffect Effect
	Rules         []*Rule
}
