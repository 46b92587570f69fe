/*
Package require turns policy conditions into the source-side requirement
sets the key compiler encodes.

Given a fixed destination, Collect walks a condition and extracts atomic
requirements from leaves with a recognizable shape: one side a bare Src
reference, the other side free of source and environment data so it can be
evaluated right away. Everything else contributes nothing. Both And and Or
pool their operands' requirements identically; the union is deliberately
permissive and callers should treat the result as "what a source may need",
not as an exact reformulation of the condition.

Merge flattens the collected requirements into per-attribute allowed lists
and trust-score bounds, keeping only the most restrictive bound in each
direction.
*/
package require
