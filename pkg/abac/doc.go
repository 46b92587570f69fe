// Package abac provides loading, validation, evaluation, and compilation
// for attribute-based access control policies.
//
// Policies describe which source entities may reach which destination
// entities on a network, in terms of entity attributes rather than
// addresses. The package parses policy, entity, and schema documents,
// evaluates conditions against concrete entities, and compiles policies
// into fixed-width bit-string match keys that a data plane can apply
// without walking the rule tree.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: condition and policy tree definitions
// - parser: JSON/JSONC/YAML parsing and AST construction
// - validator: policy, entity, and schema validation
// - errors: rich error types with location and suggestions
// - entity: typed attribute values, entities, and inventories
// - schema: attribute identifier schema (id tables, numeric bounds)
// - eval: condition evaluation, full and destination-only
// - require: source requirement extraction and merging
// - encoding: value and threshold encoding into 32-bit words
// - classify: per-destination rule filtering and match key compilation
//
// # Basic Usage
//
// Load and evaluate a policy:
//
//	import (
//	    "osprey-hq/talon/pkg/abac"
//	    "osprey-hq/talon/pkg/abac/eval"
//	)
//
//	// Load policy, schema, and entity inventory
//	policy, err := abac.LoadPolicy("policies/lab-access.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	schemaMap, err := abac.LoadSchema("schema.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	set, err := abac.LoadEntities("entities.json", schemaMap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Evaluate
//	ev := eval.New(nil)
//	decision, err := ev.Policy(policy, set.Sources[0], set.Destinations[0], nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Effect:", decision.Effect)
//
// # Policy Structure
//
// A policy document consists of:
//
//	{
//	  "policy_name": "lab-access",
//	  "description": "University lab access policy",
//	  "default_effect": "deny",
//	  "rules": [
//	    {
//	      "id": "r-server-faculty",
//	      "description": "Faculty reach servers",
//	      "effect": "allow",
//	      "condition": {
//	        "operator": "AND",
//	        "operands": [
//	          {"operator": "EQ", "lhs": "Dst.Type", "rhs": "server"},
//	          {"operator": "EQ", "lhs": "Src.Role", "rhs": "faculty"},
//	          {"operator": "GTE", "lhs": "Src.TrustScore", "rhs": 50}
//	        ]
//	      }
//	    }
//	  ]
//	}
//
// Rule order is significant: evaluation stops at the first rule whose
// condition holds, and the policy's default effect applies when no rule
// matches.
//
// # Validation
//
// The validator performs three types of checks:
//
// 1. Structural: required fields, effect values, rule id uniqueness
// 2. Semantic: attribute references, statically impossible expressions
// 3. Data: entity values against attribute kinds and the schema
//
// # Error Handling
//
// Loading and validation return rich errors with location and suggestions:
//
//	if err := abac.Validate(policy); err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    }
//	}
//
// Error format:
//
//	[semantic] Rule "r-1" references undefined attribute "Src.Rol"
//	  --> policies/lab-access.json:1:1
//	  |
//	  = suggestion: Did you mean 'Src.Role'?
//
// # Policy Composition
//
// Load multiple policy files:
//
//	paths := []string{
//	    "policies/lab-access.json",
//	    "policies/printer-access.json",
//	}
//	policies, err := abac.LoadPolicies(paths)
//
// Or load from a directory:
//
//	policies, err := abac.LoadDirectory("policies/*.json")
//
// Policies stay separate after loading. Rule filtering and evaluation
// walk them in load order, so file order decides precedence.
//
// # Compilation
//
// The classify subpackage compiles policies plus an identifier schema
// into per-destination match keys: for each destination it keeps the
// rules that could apply there, extracts what those rules require of a
// source, and encodes the requirements as fixed-width bit strings. See
// the classify and encoding package documentation for the key layout.
package abac
