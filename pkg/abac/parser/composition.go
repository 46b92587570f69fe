package parser

import (
	"fmt"
	"path/filepath"

	"osprey-hq/talon/pkg/abac/ast"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// Composer loads policy sets from multiple files. Policies stay separate
// after composition: rule filtering and evaluation walk them in load
// order, so merging files would change first-match semantics.
type Composer struct {
	parser *Parser
}

// NewComposer creates a new policy composer.
func NewComposer(parser *Parser) *Composer {
	return &Composer{
		parser: parser,
	}
}

// ComposeFromPaths loads the given policy files in order and checks that
// policy names are unique across the set.
func (c *Composer) ComposeFromPaths(paths []string) ([]*ast.Policy, error) {
	policies, err := c.parser.ParseMulti(paths)
	if err != nil {
		return nil, err
	}
	if err := checkUniqueNames(policies, paths); err != nil {
		return nil, err
	}
	return policies, nil
}

// ComposeFromDirectory loads every policy file matching the glob pattern.
// filepath.Glob returns matches in lexical order, which becomes the
// policy evaluation order.
func (c *Composer) ComposeFromDirectory(pattern string) ([]*ast.Policy, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("No policy files found matching pattern %q", pattern),
		}
	}

	return c.ComposeFromPaths(matches)
}

// checkUniqueNames rejects policy sets where two files declare the same
// policy name. The name identifies the policy in rule listings and keys,
// so a duplicate would make results ambiguous.
func checkUniqueNames(policies []*ast.Policy, paths []string) error {
	seen := make(map[string]string, len(policies))
	for i, policy := range policies {
		if prev, ok := seen[policy.Name]; ok {
			return &abacErrors.Error{
				Type:    abacErrors.ErrorTypeSemantic,
				Message: fmt.Sprintf("Duplicate policy name %q (already defined in %s)", policy.Name, prev),
				Location: abacErrors.Location{
					File: paths[i],
				},
				Suggestion: "Rename one of the policies",
			}
		}
		seen[policy.Name] = paths[i]
	}
	return nil
}
