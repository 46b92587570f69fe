package abac

import (
	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/parser"
	"osprey-hq/talon/pkg/abac/schema"
	"osprey-hq/talon/pkg/abac/validator"
)

// LoadPolicy is a convenience function that parses and validates a policy file.
// It returns the parsed AST if successful, or an error if parsing or validation fails.
func LoadPolicy(path string) (*ast.Policy, error) {
	// Parse
	p := parser.NewParser()
	policy, err := p.Parse(path)
	if err != nil {
		return nil, err
	}

	// Validate
	v := validator.NewValidator()
	if err := v.Validate(policy); err != nil {
		return nil, err
	}

	return policy, nil
}

// LoadPolicyBytes is a convenience function that parses and validates a
// policy document from bytes.
func LoadPolicyBytes(data []byte, sourcePath string) (*ast.Policy, error) {
	// Parse
	p := parser.NewParser()
	policy, err := p.ParseBytes(data, sourcePath)
	if err != nil {
		return nil, err
	}

	// Validate
	v := validator.NewValidator()
	if err := v.Validate(policy); err != nil {
		return nil, err
	}

	return policy, nil
}

// LoadPolicies parses and validates a list of policy files. The returned
// slice preserves the given order; evaluation and rule filtering walk
// policies in that order.
func LoadPolicies(paths []string) ([]*ast.Policy, error) {
	p := parser.NewParser()
	policies, err := p.ParseMulti(paths)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.ValidateAll(policies); err != nil {
		return nil, err
	}

	return policies, nil
}

// LoadDirectory parses and validates every policy file matching a glob
// pattern. Files load in lexical order.
func LoadDirectory(pattern string) ([]*ast.Policy, error) {
	composer := parser.NewComposer(parser.NewParser())
	policies, err := composer.ComposeFromDirectory(pattern)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.ValidateAll(policies); err != nil {
		return nil, err
	}

	return policies, nil
}

// LoadEntities parses and validates an entity inventory file. The schema
// map may be nil; value checks against the schema are then skipped.
func LoadEntities(path string, schemaMap *schema.Map) (*entity.Inventory, error) {
	p := parser.NewParser()
	set, err := p.ParseEntities(path)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.ValidateEntities(set, schemaMap); err != nil {
		return nil, err
	}

	return set, nil
}

// LoadSchema parses and validates an attribute identifier schema file.
func LoadSchema(path string) (*schema.Map, error) {
	p := parser.NewParser()
	schemaMap, err := p.ParseSchema(path)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator()
	if err := v.ValidateSchema(schemaMap); err != nil {
		return nil, err
	}

	return schemaMap, nil
}

// Parse parses a policy file without validation.
// Use this if you want to inspect the AST before validation.
func Parse(path string) (*ast.Policy, error) {
	p := parser.NewParser()
	return p.Parse(path)
}

// Validate validates a parsed policy.
func Validate(policy *ast.Policy) error {
	v := validator.NewValidator()
	return v.Validate(policy)
}
