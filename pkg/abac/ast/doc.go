/*
Package ast defines the abstract syntax tree for access policies: ordered
rule lists whose conditions compare source, destination and environment
attributes.

# Structure

A policy forms a tree:

	Policy
	├── Name, Description, DefaultEffect
	└── Rules (ordered; first match wins)
	    └── Rule
	        ├── ID, Description, Effect
	        └── Condition
	            ├── And / Or        (n-ary logical nodes)
	            └── Eq / Gte / Gt / Lt / In / InSet  (leaves)
	                └── Expr: literals, Src./Dst./Env. references, add, mul

Condition and Expr are closed interfaces; every consumer dispatches with a
type switch and can rely on the variant set never growing behind its back.

# References

Expressions address entity attributes through their wire names: "Src.Role"
reads the source entity, "Dst.Type" the destination entity, "Env.MFA" the
caller-supplied environment. ExprReferencesDestination and friends report
which halves of the model a subtree touches; the destination-scoped
applicability filter and the requirement extractor are built on these
predicates.

# In versus InSet

Both forms are the same membership test at evaluation time. They stay
distinct in the tree because requirement extraction reads them differently:
In expects the source reference on the element side ("is Src.Role one of
these values"), InSet expects it on the set side ("is this value one of
Src.Groups").
*/
package ast
