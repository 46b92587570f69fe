// Package parser provides document parsing and AST construction for
// policies, entity inventories, and attribute schemas.
//
// The parser reads JSON, JSONC, or YAML (chosen by file extension),
// validates document structure, and constructs the typed values the rest
// of the engine consumes: *ast.Policy, *entity.Inventory, and *schema.Map.
//
// # Basic Usage
//
// Parse a policy file:
//
//	parser := parser.NewParser()
//	policy, err := parser.Parse("policies/lab-access.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Loaded policy:", policy.Name)
//	fmt.Println("Rules:", len(policy.Rules))
//
// Parse from memory:
//
//	data := []byte(`{
//	    "policy_name": "lab-access",
//	    "description": "Lab access policy",
//	    "default_effect": "deny",
//	    "rules": [{
//	        "id": "r-faculty",
//	        "effect": "allow",
//	        "condition": {"operator": "EQ", "lhs": "Src.Role", "rhs": "faculty"}
//	    }]
//	}`)
//
//	policy, err := parser.ParseBytes(data, "memory://policy.json")
//
// Load entities and the attribute schema:
//
//	set, err := parser.ParseEntities("data/entities.json")
//	idMap, err := parser.ParseSchema("data/attr_ids.json")
//
// # Condition Wire Format
//
// Conditions are objects tagged by "operator":
//
//	{"operator": "AND", "operands": [...]}
//	{"operator": "EQ", "lhs": "Src.Role", "rhs": "faculty"}
//	{"operator": "GTE", "lhs": "Src.TrustScore", "rhs": 50}
//	{"operator": "IN", "target": "Dst.OwnerDept", "check_against": "Src.Groups"}
//	{"operator": "IN", "value": "gpu", "set": "Src.Groups"}
//
// Expression strings dispatch on prefix: "Src." and "Dst." are attribute
// references, "Env." is an environment reference, anything else is a
// string literal. Numbers must be integers. Arithmetic uses
// {"operator": "ADD"|"MULTIPLY", "operands": [...]}.
//
// # Configuration
//
// Configure parser limits:
//
//	parser := parser.NewParser().
//	    WithMaxFileSize(5 * 1024 * 1024). // 5MB limit
//	    WithMaxDepth(15).                 // Max nesting depth
//	    WithStrictMode(true)              // Reject unknown document fields
//
// # Error Handling
//
// The parser returns rich errors with location and context:
//
//	policy, err := parser.Parse("policy.json")
//	if err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        fmt.Printf("Found %d errors:\n", errList.Count())
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    } else {
//	        fmt.Println(err)
//	    }
//	}
//
// Attribute keys in entity files are checked against the fixed vocabulary
// during parsing, so an unknown key fails here rather than surfacing as a
// silent non-match during evaluation.
package parser
