// Package validator provides validation for access policies, entity
// inventories, and identifier schemas.
//
// The validator performs three types of validation:
//
// 1. Structural Validation: Checks required fields, effect values, rule
// uniqueness, and condition shape
//
// 2. Semantic Validation: Validates attribute references against the
// data model and flags expressions that can never evaluate without error
//
// 3. Data Validation: Checks entity attribute values and schema entries
// against the data model
//
// # Basic Usage
//
// Validate a parsed policy:
//
//	policy, err := parser.Parse("policy.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	validator := validator.NewValidator()
//	if err := validator.Validate(policy); err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    }
//	    log.Fatal(err)
//	}
//
// Run specific validation passes:
//
//	validator := validator.NewValidator()
//
//	// Only structural validation
//	if err := validator.ValidateStructural(policy); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Only semantic validation
//	if err := validator.ValidateSemantic(policy); err != nil {
//	    log.Fatal(err)
//	}
//
// Validate entity inventories and schemas:
//
//	if err := validator.ValidateSchema(schemaMap); err != nil {
//	    log.Fatal(err)
//	}
//	if err := validator.ValidateEntities(set, schemaMap); err != nil {
//	    log.Fatal(err)
//	}
//
// # Validation Passes
//
// Structural Validation checks:
// - Required fields (policy_name, default_effect, rule ids)
// - Effect values (allow, deny)
// - Rule uniqueness (no duplicate rule ids within a policy)
// - Condition structure (no nil nodes, max nesting depth)
//
// Semantic Validation checks:
// - Attribute references (attribute exists in the data model)
// - Ordering comparisons (GTE/GT/LT sides are not statically non-numeric)
// - Arithmetic operands (ADD/MULTIPLY operands are not statically non-numeric)
// - Membership shapes (element is not statically non-string, collection
// is not statically non-set)
//
// Semantic validation flags only expressions whose evaluation is
// guaranteed to fail. Kind mismatches that merely evaluate to false,
// such as EQ between a number and a string, are legal. Environment
// references have no static kind and always pass.
//
// Data Validation checks:
// - Entity attribute kinds (Src.Role holds a string, Src.Groups a set)
// - Categorical values appear in the schema's id tables
// - Numeric values fall inside the schema's declared bounds
// - Schema attributes exist in the data model with the matching type
//
// # Data Model
//
// The validator validates attribute references against a fixed data
// model:
//
//	Src.Role, Src.Dept              - strings
//	Src.TrustScore, Src.SessionCount - numbers
//	Src.Groups                       - set of strings
//	Dst.Type, Dst.OwnerDept          - strings
//	Dst.Sensitivity                  - number
//	Dst.AllowedVLANs                 - set of strings
//
// Lookup an attribute:
//
//	info, ok := validator.LookupAttr("Src.Role")
//	if !ok {
//	    log.Fatal("Attribute not found")
//	}
//	fmt.Println("Attribute kind:", info.Kind)
//
// Get all valid attribute names (for suggestions):
//
//	allAttrs := validator.AllAttrNames()
//	fmt.Println("Valid attributes:", allAttrs)
//
// # Validation Order
//
// Validations run in sequence:
// 1. Structural validation (fail fast on shape errors)
// 2. Semantic validation (only if structural passed)
//
// This prevents cascading errors and provides clearer error messages.
// Data validation is independent and runs against inventories and
// schemas rather than policies.
package validator
