package validator

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/ast"
	"osprey-hq/talon/pkg/abac/entity"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
	"osprey-hq/talon/pkg/abac/schema"
)

// Validator is the main validator that orchestrates all validation passes.
// It runs structural and semantic validation on policies and data
// validation on entity inventories and schemas.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
	data       *DataValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
		data:       NewDataValidator(),
	}
}

// Validate runs all validation passes on a policy.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(policy *ast.Policy) error {
	errors := abacErrors.NewErrorList()

	// Run structural validation
	if err := v.structural.Validate(policy); err != nil {
		if errList, ok := err.(*abacErrors.ErrorList); ok {
			errors.Errors = append(errors.Errors, errList.Errors...)
		}
	}

	// Run semantic validation (only if structural validation passed)
	// This prevents cascading errors
	if !errors.HasErrorType(abacErrors.ErrorTypeStructural) {
		if err := v.semantic.Validate(policy); err != nil {
			if errList, ok := err.(*abacErrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateAll validates a policy list, including the cross-policy rule
// that policy names are unique. Rule lookup and evaluation address
// policies by name, so a duplicate would shadow one of them.
func (v *Validator) ValidateAll(policies []*ast.Policy) error {
	errors := abacErrors.NewErrorList()
	names := make(map[string]bool)

	for _, policy := range policies {
		if policy == nil {
			continue
		}

		if policy.Name != "" && names[policy.Name] {
			errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeSemantic,
				fmt.Sprintf("Duplicate policy name %q", policy.Name),
				abacErrors.Location{},
				"Rename one of the policies",
			)
		}
		names[policy.Name] = true

		if err := v.Validate(policy); err != nil {
			if errList, ok := err.(*abacErrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(policy *ast.Policy) error {
	return v.structural.Validate(policy)
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(policy *ast.Policy) error {
	return v.semantic.Validate(policy)
}

// ValidateEntities validates an entity inventory against the data model
// and an optional identifier schema.
func (v *Validator) ValidateEntities(set *entity.Inventory, schemaMap *schema.Map) error {
	return v.data.ValidateEntities(set, schemaMap)
}

// ValidateSchema validates an identifier schema against the data model.
func (v *Validator) ValidateSchema(schemaMap *schema.Map) error {
	return v.data.ValidateSchema(schemaMap)
}
