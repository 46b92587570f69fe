package entity

import (
	"errors"
	"testing"
)

// TestValueEqual_Structural tests structural equality across kinds
func TestValueEqual_Structural(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{
			name: "equal strings",
			a:    String("faculty"),
			b:    String("faculty"),
			want: true,
		},
		{
			name: "different strings",
			a:    String("faculty"),
			b:    String("student"),
			want: false,
		},
		{
			name: "equal numbers",
			a:    Number(42),
			b:    Number(42),
			want: true,
		},
		{
			name: "number never coerces to string",
			a:    Number(5),
			b:    String("5"),
			want: false,
		},
		{
			name: "bool vs number",
			a:    Bool(true),
			b:    Number(1),
			want: false,
		},
		{
			name: "equal sets",
			a:    Set("a", "b"),
			b:    Set("a", "b"),
			want: true,
		},
		{
			name: "sets compare element-wise in order",
			a:    Set("a", "b"),
			b:    Set("b", "a"),
			want: false,
		},
		{
			name: "sets of different length",
			a:    Set("a"),
			b:    Set("a", "b"),
			want: false,
		},
		{
			name: "empty sets equal",
			a:    Set(),
			b:    Set(),
			want: true,
		},
		{
			name: "equal bools",
			a:    Bool(false),
			b:    Bool(false),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			// Equality is symmetric.
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestValueAccessors tests kind dispatch through the As* accessors
func TestValueAccessors(t *testing.T) {
	v := Set("eng-core", "eng-fw")

	members, ok := v.AsSet()
	if !ok {
		t.Fatalf("AsSet() ok = false, want true")
	}
	if len(members) != 2 || members[0] != "eng-core" || members[1] != "eng-fw" {
		t.Errorf("AsSet() = %v, want [eng-core eng-fw]", members)
	}

	// The returned slice is a copy; mutating it must not touch the value.
	members[0] = "mutated"
	again, _ := v.AsSet()
	if again[0] != "eng-core" {
		t.Errorf("AsSet() after mutation = %v, want eng-core first", again)
	}

	if _, ok := v.AsString(); ok {
		t.Errorf("AsString() ok = true for set value, want false")
	}
	if _, ok := v.AsNumber(); ok {
		t.Errorf("AsNumber() ok = true for set value, want false")
	}

	n, ok := Number(-7).AsNumber()
	if !ok || n != -7 {
		t.Errorf("AsNumber() = %d, %v, want -7, true", n, ok)
	}
}

// TestValueContains tests set membership checks
func TestValueContains(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		member string
		want   bool
	}{
		{name: "present", value: Set("a", "b"), member: "b", want: true},
		{name: "absent", value: Set("a", "b"), member: "c", want: false},
		{name: "empty set", value: Set(), member: "a", want: false},
		{name: "non-set value", value: String("a"), member: "a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Contains(tt.member); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.member, got, tt.want)
			}
		})
	}
}

// TestValueString tests the log rendering of each kind
func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "string", value: String("db"), want: `"db"`},
		{name: "number", value: Number(84), want: "84"},
		{name: "bool", value: Bool(true), want: "true"},
		{name: "set", value: Set("a", "b"), want: "{a, b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseSourceKey tests the closed source key vocabulary
func TestParseSourceKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SourceKey
		wantErr bool
	}{
		{name: "role", input: "Src.Role", want: SourceRole},
		{name: "dept", input: "Src.Dept", want: SourceDept},
		{name: "trust score", input: "Src.TrustScore", want: SourceTrustScore},
		{name: "groups", input: "Src.Groups", want: SourceGroups},
		{name: "session count", input: "Src.SessionCount", want: SourceSessionCount},
		{name: "unknown key", input: "Src.Shoe", wantErr: true},
		{name: "destination key", input: "Dst.Type", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSourceKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSourceKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var unknownErr *UnknownKeyError
				if !errors.As(err, &unknownErr) {
					t.Fatalf("ParseSourceKey(%q) error type = %T, want *UnknownKeyError", tt.input, err)
				}
				if unknownErr.Key != tt.input {
					t.Errorf("UnknownKeyError.Key = %q, want %q", unknownErr.Key, tt.input)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseSourceKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseDestinationKey tests the closed destination key vocabulary
func TestParseDestinationKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DestinationKey
		wantErr bool
	}{
		{name: "type", input: "Dst.Type", want: DestinationType},
		{name: "owner dept", input: "Dst.OwnerDept", want: DestinationOwnerDept},
		{name: "sensitivity", input: "Dst.Sensitivity", want: DestinationSensitivity},
		{name: "allowed vlans", input: "Dst.AllowedVLANs", want: DestinationAllowedVLANs},
		{name: "unknown key", input: "Dst.Rack", wantErr: true},
		{name: "source key", input: "Src.Role", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDestinationKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDestinationKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDestinationKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestEntityAttributes tests construction isolation and lookup
func TestEntityAttributes(t *testing.T) {
	attrs := map[SourceKey]Value{
		SourceRole:       String("faculty"),
		SourceTrustScore: Number(72),
	}
	src := NewSource("10.0.4.7", "workstation", attrs)

	// Mutating the map after construction must not affect the entity.
	attrs[SourceRole] = String("student")

	role, ok := src.Attribute(SourceRole)
	if !ok {
		t.Fatalf("Attribute(SourceRole) ok = false, want true")
	}
	if got, _ := role.AsString(); got != "faculty" {
		t.Errorf("Attribute(SourceRole) = %q, want %q", got, "faculty")
	}

	if _, ok := src.Attribute(SourceGroups); ok {
		t.Errorf("Attribute(SourceGroups) ok = true, want false")
	}

	keys := src.Keys()
	if len(keys) != 2 || keys[0] != SourceRole || keys[1] != SourceTrustScore {
		t.Errorf("Keys() = %v, want [Src.Role Src.TrustScore]", keys)
	}
}

// TestEnvironmentLookup tests env lookups by full reference name
func TestEnvironmentLookup(t *testing.T) {
	env := Environment{"Env.MFA": Bool(true)}

	v, ok := env.Lookup("Env.MFA")
	if !ok {
		t.Fatalf("Lookup(Env.MFA) ok = false, want true")
	}
	if got, _ := v.AsBool(); !got {
		t.Errorf("Lookup(Env.MFA) = %v, want true", v)
	}

	if _, ok := env.Lookup("Env.TimeOfDay"); ok {
		t.Errorf("Lookup(Env.TimeOfDay) ok = true, want false")
	}
}
