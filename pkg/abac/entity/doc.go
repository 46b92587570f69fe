/*
Package entity defines the attribute model shared by policy evaluation and
key compilation: typed attribute values, the closed attribute vocabularies
for source and destination entities, and the entities themselves.

Values are a tagged union over four kinds:

	entity.String("faculty")
	entity.Number(84)
	entity.Set("eng-core", "eng-fw")
	entity.Bool(true)

Equality is structural and never coerces: entity.Number(5) does not equal
entity.String("5"). Sets preserve their stored order and compare
element-wise; the order carries no meaning to callers.

Attribute keys form closed vocabularies. Source entities may carry
Src.Role, Src.Dept, Src.TrustScore, Src.Groups and Src.SessionCount;
destination entities may carry Dst.Type, Dst.OwnerDept, Dst.Sensitivity and
Dst.AllowedVLANs. ParseSourceKey and ParseDestinationKey translate wire
names at the load boundary and fail with *UnknownKeyError for anything
else, so misspelled attributes are rejected instead of silently never
matching.
*/
package entity
