// Package errors provides rich error types for policy loading and validation.
//
// The error types include source location, context, and suggestions to help
// users quickly identify and fix problems in policy, schema, and entity files.
//
// # Error Types
//
// ErrorTypeSyntax: document syntax errors (malformed JSON or YAML)
//
// ErrorTypeStructural: document shape violations (missing required fields, invalid types)
//
// ErrorTypeSemantic: semantic errors (unknown attribute references, operand mismatches)
//
// ErrorTypeValidation: entity or schema data that violates the attribute schema
//
// ErrorTypeIO: file I/O errors
//
// # Basic Usage
//
// Create an error with location:
//
//	err := &errors.Error{
//	    Type:     errors.ErrorTypeSemantic,
//	    Message:  "Unknown attribute reference \"Src.Rol\"",
//	    Location: condLocation,
//	}
//
// Add context from the source file:
//
//	err = errors.AddContextToError(err)
//	fmt.Println(err.Error())
//
// Accumulate multiple errors:
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeStructural, "Missing 'policy_name'", location)
//	errList.AddError(errors.ErrorTypeSemantic, "Unknown attribute reference", condLocation)
//
//	if errList.HasErrors() {
//	    return errList.ToError()
//	}
//
// # Error Format
//
// Errors are formatted with location, context, and suggestions:
//
//	[semantic] Unknown attribute reference "Src.Rol"
//	  --> policies/lab-access.json:15:20
//	  |
//	  15 |         "lhs": "Src.Rol",
//	  |
//	  = suggestion: Did you mean 'Src.Role'?
//
// # Suggestions
//
// The suggestion generator uses Levenshtein distance to suggest similar names
// when users make typos in attribute keys or operator tags:
//
//	suggestion := errors.SuggestAttributeKey("Src.Rol",
//	    []string{"Src.Role", "Src.Dept", "Src.TrustScore"})
//	// Returns: "Did you mean 'Src.Role'?"
package errors
