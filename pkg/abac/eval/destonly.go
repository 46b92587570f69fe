package eval

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
)

// Ternary is the result of destination-only partial evaluation. A leaf
// that needs source or environment data cannot be decided and reports
// Unknown; logical nodes combine results with Kleene semantics.
type Ternary int

const (
	False Ternary = iota
	True
	Unknown
)

// String returns the lowercase name of the ternary value.
func (t Ternary) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("ternary(%d)", int(t))
	}
}

// emptySource backs concrete leaf evaluation during partial evaluation.
// Leaves that reference the source never reach concrete evaluation, so
// its attributes are never read.
var emptySource = entity.NewSource("", "", nil)

// ConditionDestOnly partially evaluates a condition with only the
// destination bound. Leaves that reference the source or environment are
// Unknown; pure destination and literal leaves evaluate concretely. And
// is False as soon as one operand is False, Unknown if any operand is
// Unknown, True otherwise (an empty And is True). Or is True as soon as
// one operand is True, Unknown if any operand is Unknown, False otherwise
// (an empty Or is False: nothing can ever satisfy it).
//
// The result is a sound over-approximation: if some source could satisfy
// the condition when reaching dst, the result is never False.
func (ev *Evaluator) ConditionDestOnly(c ast.Condition, dst *entity.Destination) (Ternary, error) {
	switch x := c.(type) {
	case *ast.And:
		result := True
		for _, operand := range x.Operands {
			t, err := ev.ConditionDestOnly(operand, dst)
			if err != nil {
				return False, err
			}
			if t == False {
				return False, nil
			}
			if t == Unknown {
				result = Unknown
			}
		}
		return result, nil

	case *ast.Or:
		result := False
		for _, operand := range x.Operands {
			t, err := ev.ConditionDestOnly(operand, dst)
			if err != nil {
				return False, err
			}
			if t == True {
				return True, nil
			}
			if t == Unknown {
				result = Unknown
			}
		}
		return result, nil

	default:
		if ast.ReferencesSourceOrEnv(c) {
			return Unknown, nil
		}
		ok, err := ev.Condition(c, emptySource, dst, nil)
		if err != nil {
			return False, err
		}
		if ok {
			return True, nil
		}
		return False, nil
	}
}

// RuleApplicable reports whether the rule could match some source
// reaching dst. Rules that never reference the destination apply
// everywhere; otherwise the rule is applicable unless partial evaluation
// definitively falsifies its condition. It never reports false for a
// rule that some source could match.
func (ev *Evaluator) RuleApplicable(r *ast.Rule, dst *entity.Destination) (bool, error) {
	if r.Condition == nil {
		return false, fmt.Errorf("rule %q has no condition", r.ID)
	}
	if !ast.ReferencesDestination(r.Condition) {
		return true, nil
	}
	t, err := ev.ConditionDestOnly(r.Condition, dst)
	if err != nil {
		return false, err
	}
	return t != False, nil
}
