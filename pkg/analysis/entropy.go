package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"osprey-hq/talon/pkg/abac/entity"
)

// Label renders an attribute value as its canonical string form:
// sets are sorted and braced ("{a, b}"), booleans are "true"/"false",
// numbers are decimal. Two equal values always produce the same
// label, so labels can key frequency counts.
func Label(v entity.Value) string {
	switch v.Kind() {
	case entity.KindString:
		s, _ := v.AsString()
		return s
	case entity.KindBool:
		b, _ := v.AsBool()
		return fmt.Sprintf("%t", b)
	case entity.KindNumber:
		n, _ := v.AsNumber()
		return fmt.Sprintf("%d", n)
	case entity.KindSet:
		members, _ := v.AsSet()
		sorted := make([]string, len(members))
		copy(sorted, members)
		sort.Strings(sorted)
		return "{" + strings.Join(sorted, ", ") + "}"
	default:
		return fmt.Sprintf("kind(%d)", int(v.Kind()))
	}
}

// Distribution maps each canonical value label to its relative
// frequency within the population. An empty population yields an
// empty map.
func Distribution(values []entity.Value) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}

	counts := make(map[string]int)
	for _, v := range values {
		counts[Label(v)]++
	}

	total := float64(len(values))
	dist := make(map[string]float64, len(counts))
	for label, count := range counts {
		dist[label] = float64(count) / total
	}
	return dist
}

// Entropy computes the Shannon entropy in bits of a probability
// vector. The vector is normalized first, so raw counts work too;
// zero-probability entries contribute nothing.
func Entropy(probabilities []float64) float64 {
	if len(probabilities) == 0 {
		return 0
	}

	var sum float64
	for _, p := range probabilities {
		sum += p
	}
	if sum <= 0 {
		return 0
	}

	var entropy float64
	for _, p := range probabilities {
		normalized := p / sum
		if normalized > 0 {
			entropy -= normalized * math.Log2(normalized)
		}
	}
	return entropy
}

// InformationGain computes how much splitting a population reduces
// entropy: the base entropy minus the size-weighted entropy of the
// subsets. Mismatched slice lengths and empty splits yield zero.
func InformationGain(baseEntropy float64, subsetEntropies []float64, subsetSizes []int) float64 {
	if len(subsetEntropies) != len(subsetSizes) {
		return 0
	}

	total := 0
	for _, size := range subsetSizes {
		total += size
	}
	if total == 0 {
		return 0
	}

	var weighted float64
	for i, e := range subsetEntropies {
		if subsetSizes[i] > 0 {
			weighted += float64(subsetSizes[i]) / float64(total) * e
		}
	}
	return baseEntropy - weighted
}

// distributionValues flattens a distribution into its probability
// vector.
func distributionValues(dist map[string]float64) []float64 {
	probs := make([]float64, 0, len(dist))
	for _, p := range dist {
		probs = append(probs, p)
	}
	return probs
}
