// Package schema defines the attribute-id schema that grounds the bit
// encoding of destination attributes.
//
// Each destination attribute is declared with a value type and, for
// categorical types, a bijection between value strings and small
// unsigned ids. Numeric attributes instead carry optional bounds. The
// encoder in pkg/abac/encoding consults the schema to turn attribute
// values into ids and ids into bit positions, so every id must stay
// below 32 for the categorical types; that limit is enforced at
// encoding time, not here, because the schema itself is also used by
// tooling that never builds bit strings.
package schema
