package encoding

import (
	"strings"

	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/require"
	"osprey-hq/talon/pkg/abac/schema"
)

// ThresholdKey is the synthetic per-attribute slot name carrying the
// trust-score threshold mask.
const ThresholdKey = "Src.TrustScore.Threshold"

// KeySemantics qualifies how a compiled key must be interpreted by the
// matcher consuming it.
type KeySemantics struct {
	// UseTrustScoreThreshold is set when the key carries a threshold
	// word: the Src.TrustScore slot is then always zero and the bound
	// lives in the extra slot instead.
	UseTrustScoreThreshold bool
}

// RequirementKey compiles merged requirements into one concatenated
// bit-string: one 32-bit word per attribute in attrOrder, in order,
// followed by one threshold word. The result is always
// 32*(len(attrOrder)+1) characters wide; the threshold word is zero
// when no trust-score bound is present.
func RequirementKey(m *schema.Map, merged *require.Merged, attrOrder []string, trustThresholds []int64) (string, KeySemantics, error) {
	words, trustUsed, err := keyWords(m, merged, attrOrder)
	if err != nil {
		return "", KeySemantics{}, err
	}

	var sb strings.Builder
	sb.Grow(32 * (len(words) + 1))
	for _, w := range words {
		sb.WriteString(BitString(w))
	}
	var th uint32
	if trustUsed {
		th = thresholdWord(merged, trustThresholds)
	}
	sb.WriteString(BitString(th))

	return sb.String(), KeySemantics{UseTrustScoreThreshold: trustUsed}, nil
}

// RequirementKeyPerAttr compiles merged requirements into a word per
// attribute name. The ThresholdKey entry appears only when a
// trust-score bound is present.
func RequirementKeyPerAttr(m *schema.Map, merged *require.Merged, attrOrder []string, trustThresholds []int64) (map[string]string, KeySemantics, error) {
	words, trustUsed, err := keyWords(m, merged, attrOrder)
	if err != nil {
		return nil, KeySemantics{}, err
	}

	out := make(map[string]string, len(attrOrder)+1)
	for i, name := range attrOrder {
		out[name] = BitString(words[i])
	}
	if trustUsed {
		out[ThresholdKey] = BitString(thresholdWord(merged, trustThresholds))
	}

	return out, KeySemantics{UseTrustScoreThreshold: trustUsed}, nil
}

// keyWords computes the per-attribute words shared by both key forms.
// The second result reports whether a trust-score bound was seen.
func keyWords(m *schema.Map, merged *require.Merged, attrOrder []string) ([]uint32, bool, error) {
	words := make([]uint32, len(attrOrder))
	trustUsed := false

	for i, name := range attrOrder {
		switch name {
		case string(entity.SourceRole):
			w, err := allowedMask(m, name, merged.RoleAllowed)
			if err != nil {
				return nil, false, err
			}
			words[i] = w

		case string(entity.SourceDept):
			w, err := allowedMask(m, name, merged.DeptAllowed)
			if err != nil {
				return nil, false, err
			}
			words[i] = w

		case string(entity.SourceTrustScore):
			// The slot itself stays zero; bounds travel in the
			// threshold word.
			if len(merged.TrustScoreRequiredGE) > 0 || len(merged.TrustScoreRequiredLT) > 0 {
				trustUsed = true
			}

		case string(entity.SourceGroups):
			w, err := allowedMask(m, name, merged.GroupsAllowed)
			if err != nil {
				return nil, false, err
			}
			words[i] = w

		default:
			// Names the key does not constrain occupy an all-zero slot.
		}
	}

	return words, trustUsed, nil
}

// allowedMask ORs the id bits of every allowed value. An empty list is
// the all-zero unconstrained word.
func allowedMask(m *schema.Map, attr string, values []string) (uint32, error) {
	var mask uint32
	for _, s := range values {
		id, err := m.ValueID(attr, s)
		if err != nil {
			return 0, err
		}
		if id >= 32 {
			return 0, &RangeError{Attr: attr, Value: int64(id), Detail: "does not fit in a 32-bit mask"}
		}
		mask |= 1 << id
	}
	return mask, nil
}

// thresholdWord ORs the ladder masks of every merged bound. Lower
// bounds use the compatible-bucket form, upper bounds the exact-match
// form; the two are indistinguishable in the result.
func thresholdWord(merged *require.Merged, trustThresholds []int64) uint32 {
	var bits uint32
	for _, t := range merged.TrustScoreRequiredGE {
		bits |= RequirementGEBits(t, trustThresholds)
	}
	for _, t := range merged.TrustScoreRequiredLT {
		bits |= RequirementLTBits(t, trustThresholds)
	}
	return bits
}
