package analysis

import "sort"

// Sample is one labeled observation for decision tree induction:
// string-valued attributes and the decision class they led to.
type Sample struct {
	Attributes map[string]string
	Decision   string
}

// node is either an internal split on one attribute or a leaf holding
// a decision.
type node struct {
	attribute string
	children  map[string]*node
	decision  string
	leaf      bool
}

// Tree is an ID3 decision tree over string-valued samples.
type Tree struct {
	root *node
}

// BuildTree induces a decision tree from samples using the ID3
// algorithm: leaves where all samples agree, otherwise a split on the
// attribute with the highest information gain, recursing on each
// observed value. An empty sample set yields a nil tree.
func BuildTree(samples []Sample, attributes []string) *Tree {
	if len(samples) == 0 {
		return nil
	}
	return &Tree{root: buildNode(samples, attributes)}
}

func buildNode(samples []Sample, attributes []string) *node {
	if decision, same := sameClass(samples); same {
		return &node{leaf: true, decision: decision}
	}
	if len(attributes) == 0 {
		return &node{leaf: true, decision: majorityClass(samples)}
	}

	best := selectBestAttribute(samples, attributes)

	remaining := make([]string, 0, len(attributes)-1)
	for _, attr := range attributes {
		if attr != best {
			remaining = append(remaining, attr)
		}
	}

	children := make(map[string]*node)
	for _, value := range attributeValues(samples, best) {
		subset := filterSamples(samples, best, value)
		if len(subset) == 0 {
			children[value] = &node{leaf: true, decision: majorityClass(samples)}
		} else {
			children[value] = buildNode(subset, remaining)
		}
	}

	return &node{attribute: best, children: children}
}

// Classify walks the tree for the given attributes and returns the
// decision. An attribute value the tree never saw falls through to
// the lexically first child; a missing attribute takes the majority
// decision of the subtrees. A nil tree classifies everything as "".
func (t *Tree) Classify(attributes map[string]string) string {
	if t == nil || t.root == nil {
		return ""
	}
	return classify(t.root, attributes)
}

func classify(n *node, attributes map[string]string) string {
	if n.leaf {
		return n.decision
	}

	value, ok := attributes[n.attribute]
	if ok {
		if child, found := n.children[value]; found {
			return classify(child, attributes)
		}
		// Unseen value: fall through the lexically first branch so
		// classification stays deterministic.
		keys := childKeys(n)
		if len(keys) == 0 {
			return ""
		}
		return classify(n.children[keys[0]], attributes)
	}

	// Missing attribute: majority vote across subtrees.
	counts := make(map[string]int)
	for _, key := range childKeys(n) {
		counts[classify(n.children[key], attributes)]++
	}
	return majorityLabel(counts)
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t == nil || t.root == nil {
		return 0
	}
	return depth(t.root)
}

func depth(n *node) int {
	if n.leaf {
		return 0
	}
	max := 0
	for _, child := range n.children {
		if d := depth(child); d > max {
			max = d
		}
	}
	return max + 1
}

func sameClass(samples []Sample) (string, bool) {
	if len(samples) == 0 {
		return "", false
	}
	first := samples[0].Decision
	for _, s := range samples[1:] {
		if s.Decision != first {
			return "", false
		}
	}
	return first, true
}

func majorityClass(samples []Sample) string {
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Decision]++
	}
	return majorityLabel(counts)
}

// majorityLabel picks the most frequent label, breaking ties
// lexically so induction is deterministic.
func majorityLabel(counts map[string]int) string {
	best := ""
	bestCount := -1
	for _, label := range sortedLabels(counts) {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}

func sortedLabels(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// selectBestAttribute picks the attribute with the highest
// information gain. Ties keep the earliest attribute in the given
// order.
func selectBestAttribute(samples []Sample, attributes []string) string {
	base := classEntropy(samples)

	best := attributes[0]
	bestGain := 0.0
	for _, attr := range attributes {
		gain := attributeGain(samples, attr, base)
		if gain > bestGain {
			best = attr
			bestGain = gain
		}
	}
	return best
}

func classEntropy(samples []Sample) float64 {
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Decision]++
	}
	probs := make([]float64, 0, len(counts))
	for _, c := range counts {
		probs = append(probs, float64(c))
	}
	return Entropy(probs)
}

func attributeGain(samples []Sample, attribute string, base float64) float64 {
	values := attributeValues(samples, attribute)

	entropies := make([]float64, 0, len(values))
	sizes := make([]int, 0, len(values))
	for _, value := range values {
		subset := filterSamples(samples, attribute, value)
		entropies = append(entropies, classEntropy(subset))
		sizes = append(sizes, len(subset))
	}
	return InformationGain(base, entropies, sizes)
}

// attributeValues returns the distinct observed values of an
// attribute in sorted order.
func attributeValues(samples []Sample, attribute string) []string {
	seen := make(map[string]bool)
	for _, s := range samples {
		if v, ok := s.Attributes[attribute]; ok {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func childKeys(n *node) []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func filterSamples(samples []Sample, attribute, value string) []Sample {
	var subset []Sample
	for _, s := range samples {
		if s.Attributes[attribute] == value {
			subset = append(subset, s)
		}
	}
	return subset
}
