package require

import "osprey-hq/talon/pkg/abac/entity"

// Merged is the flattening of a requirement list over the attributes the
// match key encodes. Allowed lists keep first-appearance order; the
// trust-score bounds hold at most one element each after merging.
type Merged struct {
	RoleAllowed          []string
	DeptAllowed          []string
	GroupsAllowed        []string
	TrustScoreRequiredGE []int64
	TrustScoreRequiredLT []int64
}

// Merge flattens requirements into the most restrictive combined form.
// Exact requirements on Src.Role and Src.Dept append their string value
// to the allowed list, deduplicated in insertion order; non-string exact
// values pass through unconstrained. Containment applies only to
// Src.Groups and Numeric only to Src.TrustScore; bounds on anything else
// are ignored because the key has no slot for them. After the pass the
// lower bounds collapse to their maximum and the upper bounds to their
// minimum.
func Merge(reqs []Requirement) *Merged {
	out := &Merged{}

	for _, req := range reqs {
		switch r := req.(type) {
		case *Exact:
			s, ok := r.Value.AsString()
			if !ok {
				continue
			}
			switch r.Attr {
			case string(entity.SourceRole):
				out.RoleAllowed = appendUnique(out.RoleAllowed, s)
			case string(entity.SourceDept):
				out.DeptAllowed = appendUnique(out.DeptAllowed, s)
			}

		case *Containment:
			if r.Attr != string(entity.SourceGroups) {
				continue
			}
			for _, s := range r.AllowedSet {
				out.GroupsAllowed = appendUnique(out.GroupsAllowed, s)
			}

		case *Numeric:
			if r.Attr != string(entity.SourceTrustScore) {
				continue
			}
			out.TrustScoreRequiredGE = append(out.TrustScoreRequiredGE, r.RequiredGE...)
			out.TrustScoreRequiredLT = append(out.TrustScoreRequiredLT, r.RequiredLT...)
		}
	}

	if len(out.TrustScoreRequiredGE) > 0 {
		max := out.TrustScoreRequiredGE[0]
		for _, t := range out.TrustScoreRequiredGE[1:] {
			if t > max {
				max = t
			}
		}
		out.TrustScoreRequiredGE = []int64{max}
	}
	if len(out.TrustScoreRequiredLT) > 0 {
		min := out.TrustScoreRequiredLT[0]
		for _, t := range out.TrustScoreRequiredLT[1:] {
			if t < min {
				min = t
			}
		}
		out.TrustScoreRequiredLT = []int64{min}
	}

	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
