package encoding

import (
	"strings"
	"testing"
)

func TestValueThresholdBits(t *testing.T) {
	ladder := []int64{0, 50, 80}

	tests := []struct {
		name  string
		value int64
		want  uint32
	}{
		{name: "below every step", value: -5, want: 0b111},
		{name: "at lowest step", value: 0, want: 0b111},
		{name: "between steps", value: 60, want: 0b100},
		{name: "at middle step", value: 50, want: 0b110},
		{name: "at highest step", value: 80, want: 0b100},
		{name: "above every step", value: 81, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueThresholdBits(tt.value, ladder); got != tt.want {
				t.Errorf("ValueThresholdBits(%d) = %#b, want %#b", tt.value, got, tt.want)
			}
		})
	}
}

func TestValueThresholdBitsCanonicalString(t *testing.T) {
	got := BitString(ValueThresholdBits(60, []int64{0, 50, 80}))
	want := strings.Repeat("0", 29) + "100"
	if got != want {
		t.Errorf("BitString(ValueThresholdBits(60)) = %q, want %q", got, want)
	}
}

func TestValueThresholdBitsMonotonic(t *testing.T) {
	ladder := []int64{0, 50, 80}
	values := []int64{-10, 0, 1, 49, 50, 51, 79, 80, 81, 200}

	prev := ValueThresholdBits(values[0], ladder)
	for _, v := range values[1:] {
		cur := ValueThresholdBits(v, ladder)
		if cur&^prev != 0 {
			t.Fatalf("ValueThresholdBits(%d) = %#b gained bits over smaller value (%#b)", v, cur, prev)
		}
		prev = cur
	}
}

func TestRequirementGEBits(t *testing.T) {
	ladder := []int64{0, 50, 80}

	tests := []struct {
		name      string
		threshold int64
		want      uint32
	}{
		{name: "no floor", threshold: -1, want: 0b111},
		{name: "floor at zero", threshold: 0, want: 0b111},
		{name: "floor between steps", threshold: 30, want: 0b110},
		{name: "floor at middle step", threshold: 50, want: 0b110},
		{name: "floor at top step", threshold: 80, want: 0b100},
		{name: "floor above ladder", threshold: 81, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequirementGEBits(tt.threshold, ladder); got != tt.want {
				t.Errorf("RequirementGEBits(%d) = %#b, want %#b", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestRequirementLTBits(t *testing.T) {
	ladder := []int64{0, 50, 80}

	tests := []struct {
		name      string
		threshold int64
		want      uint32
	}{
		{name: "matches lowest step", threshold: 0, want: 0b001},
		{name: "matches middle step", threshold: 50, want: 0b010},
		{name: "matches top step", threshold: 80, want: 0b100},
		{name: "between steps sets nothing", threshold: 60, want: 0},
		{name: "above ladder sets nothing", threshold: 99, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequirementLTBits(tt.threshold, ladder); got != tt.want {
				t.Errorf("RequirementLTBits(%d) = %#b, want %#b", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestRequirementLTBitsFirstMatchOnly(t *testing.T) {
	ladder := []int64{50, 50, 80}
	if got := RequirementLTBits(50, ladder); got != 0b001 {
		t.Errorf("RequirementLTBits(50) on duplicate ladder = %#b, want %#b", got, 0b001)
	}
}

func TestThresholdLadderCapsAt32(t *testing.T) {
	ladder := make([]int64, 40)
	for i := range ladder {
		ladder[i] = int64(i)
	}

	if got := ValueThresholdBits(-1, ladder); got != 1<<32-1 {
		t.Errorf("ValueThresholdBits(-1) on 40-step ladder = %#b, want all 32 bits", got)
	}
	if got := RequirementGEBits(-1, ladder); got != 1<<32-1 {
		t.Errorf("RequirementGEBits(-1) on 40-step ladder = %#b, want all 32 bits", got)
	}
	if got := RequirementLTBits(35, ladder); got != 0 {
		t.Errorf("RequirementLTBits(35) beyond bit 31 = %#b, want 0", got)
	}
}
