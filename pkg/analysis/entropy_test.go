package analysis

import (
	"math"
	"testing"

	"osprey-hq/talon/pkg/abac/entity"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		value entity.Value
		want  string
	}{
		{"string", entity.String("faculty"), "faculty"},
		{"bool true", entity.Bool(true), "true"},
		{"bool false", entity.Bool(false), "false"},
		{"number", entity.Number(42), "42"},
		{"negative number", entity.Number(-7), "-7"},
		{"set sorted", entity.Set("vlan20", "vlan10"), "{vlan10, vlan20}"},
		{"empty set", entity.Set(), "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.value); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabelSetOrderIndependent(t *testing.T) {
	a := Label(entity.Set("x", "y", "z"))
	b := Label(entity.Set("z", "x", "y"))
	if a != b {
		t.Errorf("Label() = %q and %q for the same set", a, b)
	}
}

func TestDistribution(t *testing.T) {
	values := []entity.Value{
		entity.String("student"),
		entity.String("student"),
		entity.String("faculty"),
		entity.String("staff"),
	}

	dist := Distribution(values)
	if len(dist) != 3 {
		t.Fatalf("len(Distribution()) = %d, want 3", len(dist))
	}
	if !almostEqual(dist["student"], 0.5) {
		t.Errorf("p(student) = %v, want 0.5", dist["student"])
	}
	if !almostEqual(dist["faculty"], 0.25) {
		t.Errorf("p(faculty) = %v, want 0.25", dist["faculty"])
	}
}

func TestDistributionEmpty(t *testing.T) {
	if dist := Distribution(nil); len(dist) != 0 {
		t.Errorf("Distribution(nil) = %v, want empty map", dist)
	}
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"single outcome", []float64{1.0}, 0},
		{"fair coin", []float64{0.5, 0.5}, 1},
		{"four-way uniform", []float64{0.25, 0.25, 0.25, 0.25}, 2},
		{"biased coin", []float64{0.9, 0.1}, 0.4689955935892812},
		{"zero entries ignored", []float64{0.5, 0.5, 0}, 1},
		{"all zero", []float64{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Entropy(tt.probs); !almostEqual(got, tt.want) {
				t.Errorf("Entropy(%v) = %v, want %v", tt.probs, got, tt.want)
			}
		})
	}
}

func TestEntropyNormalizesCounts(t *testing.T) {
	// Raw counts and probabilities give the same answer.
	fromCounts := Entropy([]float64{3, 1})
	fromProbs := Entropy([]float64{0.75, 0.25})
	if !almostEqual(fromCounts, fromProbs) {
		t.Errorf("Entropy(counts) = %v, Entropy(probs) = %v", fromCounts, fromProbs)
	}
}

func TestInformationGain(t *testing.T) {
	tests := []struct {
		name      string
		base      float64
		entropies []float64
		sizes     []int
		want      float64
	}{
		{"perfect split", 1.0, []float64{0, 0}, []int{2, 2}, 1.0},
		{"useless split", 1.0, []float64{1, 1}, []int{2, 2}, 0},
		{"weighted", 1.0, []float64{0, 1}, []int{3, 1}, 0.75},
		{"length mismatch", 1.0, []float64{0}, []int{1, 1}, 0},
		{"empty split", 1.0, nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InformationGain(tt.base, tt.entropies, tt.sizes)
			if !almostEqual(got, tt.want) {
				t.Errorf("InformationGain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceAttributeEntropy(t *testing.T) {
	sources := []*entity.Source{
		entity.NewSource("10.0.0.1", "", map[entity.SourceKey]entity.Value{
			entity.SourceRole: entity.String("student"),
		}),
		entity.NewSource("10.0.0.2", "", map[entity.SourceKey]entity.Value{
			entity.SourceRole: entity.String("faculty"),
		}),
		// No role attribute: excluded from the distribution.
		entity.NewSource("10.0.0.3", "", nil),
	}

	got := SourceAttributeEntropy(sources, entity.SourceRole)
	if !almostEqual(got, 1.0) {
		t.Errorf("SourceAttributeEntropy() = %v, want 1.0", got)
	}

	if got := SourceAttributeEntropy(sources, entity.SourceDept); got != 0 {
		t.Errorf("SourceAttributeEntropy(absent attribute) = %v, want 0", got)
	}
}

func TestDestinationAttributeEntropy(t *testing.T) {
	dests := []*entity.Destination{
		entity.NewDestination("10.1.0.1", "", map[entity.DestinationKey]entity.Value{
			entity.DestinationType: entity.String("printer"),
		}),
		entity.NewDestination("10.1.0.2", "", map[entity.DestinationKey]entity.Value{
			entity.DestinationType: entity.String("printer"),
		}),
	}

	// Uniform population carries no information.
	if got := DestinationAttributeEntropy(dests, entity.DestinationType); got != 0 {
		t.Errorf("DestinationAttributeEntropy() = %v, want 0", got)
	}
}
