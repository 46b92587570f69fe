/*
Package eval implements policy evaluation in two modes.

Full evaluation binds a source entity, a destination entity and an
environment, and walks a policy's rules in order: the first rule whose
condition is satisfied decides the outcome, and the policy's default
effect applies when none match. Comparison semantics are strict. Equality
is structural across all value kinds and a kind disagreement is simply
unequal, while the ordered comparisons (gte, gt, lt) and membership (in)
demand numbers and string/set operands respectively and fail with
*TypeMismatchError otherwise. Missing attributes and environment values
are errors too; an evaluation error always aborts the rule scan and
propagates to the caller rather than degrading into a deny.

Destination-only partial evaluation answers a different question: given
only the destination, could any source possibly satisfy this condition?
Leaves that read source or environment data are Unknown, and And/Or
combine operands with Kleene three-valued semantics where Unknown blocks
nothing. A rule is applicable to a destination unless this partial
evaluation is definitively False, which makes the applicability filter a
sound over-approximation: it may keep a rule no source will ever match,
but it never discards one that some source could.
*/
package eval
