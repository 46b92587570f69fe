package classify

import (
	"context"
	"fmt"
	"log/slog"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/encoding"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/eval"
	"osprey-hq/talon/pkg/abac/require"
	"osprey-hq/talon/pkg/abac/schema"
)

// RuleRef identifies one rule within a named policy.
type RuleRef struct {
	Policy string
	RuleID string
}

// DestinationRules lists the rules still in play for one destination
// after partial evaluation, in policy-then-rule order.
type DestinationRules struct {
	DestinationIP string
	Rules         []RuleRef
}

// DestinationKey carries the compiled per-attribute requirement key for
// one destination.
type DestinationKey struct {
	DestinationIP string
	Bits          map[string]string
	Semantics     encoding.KeySemantics
}

// DestinationConcatKey carries the concatenated requirement key for one
// destination.
type DestinationConcatKey struct {
	DestinationIP string
	Key           string
	Semantics     encoding.KeySemantics
}

// Config tunes the classifier.
type Config struct {
	// Workers bounds how many destinations are compiled concurrently.
	// Zero or negative means one worker per logical CPU.
	Workers int
}

// Classifier compiles a policy set against a destination inventory.
// Destinations are independent of one another, so the work is fanned
// out across a bounded worker pool; all inputs are read-only during a
// run.
type Classifier struct {
	config *Config
	ev     *eval.Evaluator
	logger *slog.Logger
}

// New creates a classifier. A nil config uses defaults; a nil logger
// falls back to slog.Default().
func New(config *Config, ev *eval.Evaluator, logger *slog.Logger) *Classifier {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{config: config, ev: ev, logger: logger}
}

// ApplicableRules filters every policy's rules per destination,
// keeping the ones some source could still match. Evaluation errors
// abort the run; a rule is never silently demoted to not-applicable.
func (c *Classifier) ApplicableRules(ctx context.Context, policies []*ast.Policy, dests []*entity.Destination) ([]DestinationRules, error) {
	results := make([]DestinationRules, len(dests))

	err := c.forEachDest(ctx, len(dests), func(i int) error {
		dst := dests[i]
		var refs []RuleRef
		for _, p := range policies {
			for _, r := range p.Rules {
				ok, err := c.ev.RuleApplicable(r, dst)
				if err != nil {
					return fmt.Errorf("destination %s: rule %s/%s: %w", dst.IP, p.Name, r.ID, err)
				}
				if ok {
					refs = append(refs, RuleRef{Policy: p.Name, RuleID: r.ID})
				}
			}
		}
		results[i] = DestinationRules{DestinationIP: dst.IP, Rules: refs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("filtered applicable rules",
		"destinations", len(dests),
		"policies", len(policies))
	return results, nil
}

// RequirementKeys compiles, for every destination, the merged source
// requirements of all its applicable rules into a per-attribute bit
// key.
func (c *Classifier) RequirementKeys(ctx context.Context, policies []*ast.Policy, dests []*entity.Destination, m *schema.Map, attrOrder []string, trustThresholds []int64) ([]DestinationKey, error) {
	results := make([]DestinationKey, len(dests))

	err := c.forEachDest(ctx, len(dests), func(i int) error {
		dst := dests[i]
		merged, err := c.destRequirements(policies, dst)
		if err != nil {
			return err
		}
		bits, sem, err := encoding.RequirementKeyPerAttr(m, merged, attrOrder, trustThresholds)
		if err != nil {
			return fmt.Errorf("destination %s: %w", dst.IP, err)
		}
		results[i] = DestinationKey{DestinationIP: dst.IP, Bits: bits, Semantics: sem}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled requirement keys", "destinations", len(dests))
	return results, nil
}

// ConcatenatedKeys is RequirementKeys in the single bit-string form,
// 32*(len(attrOrder)+1) characters per destination.
func (c *Classifier) ConcatenatedKeys(ctx context.Context, policies []*ast.Policy, dests []*entity.Destination, m *schema.Map, attrOrder []string, trustThresholds []int64) ([]DestinationConcatKey, error) {
	results := make([]DestinationConcatKey, len(dests))

	err := c.forEachDest(ctx, len(dests), func(i int) error {
		dst := dests[i]
		merged, err := c.destRequirements(policies, dst)
		if err != nil {
			return err
		}
		key, sem, err := encoding.RequirementKey(m, merged, attrOrder, trustThresholds)
		if err != nil {
			return fmt.Errorf("destination %s: %w", dst.IP, err)
		}
		results[i] = DestinationConcatKey{DestinationIP: dst.IP, Key: key, Semantics: sem}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled concatenated keys", "destinations", len(dests))
	return results, nil
}

// destRequirements gathers source requirements from every applicable
// rule across every policy and merges them into the most restrictive
// combination for one destination.
func (c *Classifier) destRequirements(policies []*ast.Policy, dst *entity.Destination) (*require.Merged, error) {
	var reqs []require.Requirement
	for _, p := range policies {
		for _, r := range p.Rules {
			ok, err := c.ev.RuleApplicable(r, dst)
			if err != nil {
				return nil, fmt.Errorf("destination %s: rule %s/%s: %w", dst.IP, p.Name, r.ID, err)
			}
			if !ok {
				continue
			}
			collected, err := require.Collect(c.ev, r.Condition, dst)
			if err != nil {
				return nil, fmt.Errorf("destination %s: rule %s/%s: %w", dst.IP, p.Name, r.ID, err)
			}
			reqs = append(reqs, collected...)
		}
	}
	return require.Merge(reqs), nil
}
