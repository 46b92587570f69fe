package encoding

// The threshold ladder turns trust-score comparisons into fixed-width
// masks. Callers supply an ascending list of cut points; bucket i of the
// resulting word corresponds to thresholds[i]. Only the first 32
// entries are honored.

// ValueThresholdBits encodes a concrete value as the set of buckets it
// satisfies: bit i is set iff value <= thresholds[i].
func ValueThresholdBits(value int64, thresholds []int64) uint32 {
	var bits uint32
	for i, t := range thresholds {
		if i < 32 && value <= t {
			bits |= 1 << i
		}
	}
	return bits
}

// RequirementGEBits encodes an at-least bound as the set of buckets
// compatible with it: bit i is set iff threshold <= thresholds[i].
func RequirementGEBits(threshold int64, thresholds []int64) uint32 {
	var bits uint32
	for i, t := range thresholds {
		if i < 32 && threshold <= t {
			bits |= 1 << i
		}
	}
	return bits
}

// RequirementLTBits encodes a strict upper bound by exact match: only
// the first bucket whose threshold equals the bound is set. A bound
// falling between ladder steps sets no bit. Deliberately asymmetric
// with RequirementGEBits.
func RequirementLTBits(threshold int64, thresholds []int64) uint32 {
	var bits uint32
	for i, t := range thresholds {
		if i < 32 && t == threshold {
			bits |= 1 << i
			break
		}
	}
	return bits
}
