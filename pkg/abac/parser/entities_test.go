package parser

import (
	"strings"
	"testing"

	"osprey-hq/talon/pkg/abac/entity"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

const inventoryJSON = `{
  "source_entities": [
    {
      "ip": "10.0.1.20",
      "description": "Faculty workstation",
      "attributes": {
        "Src.Role": "faculty",
        "Src.Dept": "cs",
        "Src.TrustScore": 80,
        "Src.Groups": ["gpu", "admins"]
      }
    },
    {"ip": "10.0.1.21"}
  ],
  "destination_entities": [
    {
      "ip": "10.0.2.5",
      "description": "GPU compute server",
      "attributes": {
        "Dst.Type": "server",
        "Dst.OwnerDept": "cs",
        "Dst.Sensitivity": 3,
        "Dst.AllowedVLANs": ["lab", "staff"]
      }
    }
  ]
}`

func TestParser_ParseEntitiesBytes(t *testing.T) {
	parser := NewParser()
	set, err := parser.ParseEntitiesBytes([]byte(inventoryJSON), "memory://entities.json")
	if err != nil {
		t.Fatalf("ParseEntitiesBytes() failed: %v", err)
	}

	if len(set.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(set.Sources))
	}
	if len(set.Destinations) != 1 {
		t.Fatalf("len(Destinations) = %d, want 1", len(set.Destinations))
	}

	src := set.SourceByIP("10.0.1.20")
	if src == nil {
		t.Fatal("SourceByIP(10.0.1.20) = nil, want entity")
	}
	if src.Description != "Faculty workstation" {
		t.Errorf("Description = %q, want %q", src.Description, "Faculty workstation")
	}

	role, ok := src.Attribute(entity.SourceRole)
	if !ok {
		t.Fatal("Attribute(SourceRole) not found")
	}
	if s, _ := role.AsString(); s != "faculty" {
		t.Errorf("Src.Role = %q, want %q", s, "faculty")
	}

	trust, ok := src.Attribute(entity.SourceTrustScore)
	if !ok {
		t.Fatal("Attribute(SourceTrustScore) not found")
	}
	if n, ok := trust.AsNumber(); !ok || n != 80 {
		t.Errorf("Src.TrustScore = %d (number %v), want 80", n, ok)
	}

	groups, ok := src.Attribute(entity.SourceGroups)
	if !ok {
		t.Fatal("Attribute(SourceGroups) not found")
	}
	if !groups.Contains("gpu") || !groups.Contains("admins") {
		t.Errorf("Src.Groups = %v, want members gpu and admins", groups)
	}

	// An entity without attributes is legal; it just never matches
	// attribute conditions.
	bare := set.SourceByIP("10.0.1.21")
	if bare == nil {
		t.Fatal("SourceByIP(10.0.1.21) = nil, want entity")
	}
	if _, ok := bare.Attribute(entity.SourceRole); ok {
		t.Error("Attribute(SourceRole) on bare entity should not be found")
	}

	dst := set.DestinationByIP("10.0.2.5")
	if dst == nil {
		t.Fatal("DestinationByIP(10.0.2.5) = nil, want entity")
	}
	sens, _ := dst.Attribute(entity.DestinationSensitivity)
	if n, _ := sens.AsNumber(); n != 3 {
		t.Errorf("Dst.Sensitivity = %d, want 3", n)
	}
	vlans, _ := dst.Attribute(entity.DestinationAllowedVLANs)
	members, ok := vlans.AsSet()
	if !ok || len(members) != 2 {
		t.Errorf("Dst.AllowedVLANs = %v, want 2 members", vlans)
	}

	if set.SourceByIP("10.9.9.9") != nil {
		t.Error("SourceByIP(10.9.9.9) should be nil")
	}
	if set.DestinationByIP("10.9.9.9") != nil {
		t.Error("DestinationByIP(10.9.9.9) should be nil")
	}
}

func TestParser_ParseEntitiesBytes_YAML(t *testing.T) {
	inventoryYAML := []byte(`
source_entities:
  - ip: 10.0.1.30
    attributes:
      Src.Role: student
      Src.SessionCount: 2
destination_entities: []
`)

	parser := NewParser()
	set, err := parser.ParseEntitiesBytes(inventoryYAML, "memory://entities.yaml")
	if err != nil {
		t.Fatalf("ParseEntitiesBytes() failed: %v", err)
	}

	src := set.SourceByIP("10.0.1.30")
	if src == nil {
		t.Fatal("SourceByIP(10.0.1.30) = nil, want entity")
	}
	sessions, ok := src.Attribute(entity.SourceSessionCount)
	if !ok {
		t.Fatal("Attribute(SourceSessionCount) not found")
	}
	if n, _ := sessions.AsNumber(); n != 2 {
		t.Errorf("Src.SessionCount = %d, want 2", n)
	}
}

func TestParser_ParseEntitiesBytes_UnknownAttributeKey(t *testing.T) {
	doc := []byte(`{
  "source_entities": [
    {"ip": "10.0.1.20", "attributes": {"Src.Rol": "faculty"}}
  ]
}`)

	parser := NewParser()
	_, err := parser.ParseEntitiesBytes(doc, "memory://entities.json")
	if err == nil {
		t.Fatal("ParseEntitiesBytes() should reject unknown attribute keys")
	}

	errList, ok := err.(*abacErrors.ErrorList)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	if !errList.HasErrorType(abacErrors.ErrorTypeStructural) {
		t.Errorf("expected structural errors, got: %v", errList.Errors)
	}
	found := false
	for _, e := range errList.Errors {
		if strings.Contains(e.Suggestion, "'Src.Role'") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a suggestion mentioning 'Src.Role', got errors: %v", errList.Errors)
	}
}

func TestParser_ParseEntitiesBytes_BadValues(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "null attribute value",
			doc:     `{"source_entities": [{"ip": "10.0.1.1", "attributes": {"Src.Role": null}}]}`,
			wantErr: "must not be null",
		},
		{
			name:    "float attribute value",
			doc:     `{"source_entities": [{"ip": "10.0.1.1", "attributes": {"Src.TrustScore": 79.5}}]}`,
			wantErr: "not an integer",
		},
		{
			name:    "object attribute value",
			doc:     `{"source_entities": [{"ip": "10.0.1.1", "attributes": {"Src.Role": {"x": 1}}}]}`,
			wantErr: "objects are not valid",
		},
		{
			name:    "non-string set member",
			doc:     `{"source_entities": [{"ip": "10.0.1.1", "attributes": {"Src.Groups": ["gpu", 7]}}]}`,
			wantErr: "must be a string",
		},
		{
			name:    "missing ip",
			doc:     `{"source_entities": [{"attributes": {"Src.Role": "faculty"}}]}`,
			wantErr: `missing required field "ip"`,
		},
		{
			name:    "entity not an object",
			doc:     `{"destination_entities": ["10.0.2.5"]}`,
			wantErr: "entity must be an object",
		},
		{
			name:    "entities not an array",
			doc:     `{"source_entities": {"ip": "10.0.1.1"}}`,
			wantErr: "must be an array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseEntitiesBytes([]byte(tt.doc), "memory://entities.json")
			if err == nil {
				t.Fatal("ParseEntitiesBytes() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParser_ParseEntitiesBytes_Empty(t *testing.T) {
	parser := NewParser()
	set, err := parser.ParseEntitiesBytes([]byte(`{}`), "memory://entities.json")
	if err != nil {
		t.Fatalf("ParseEntitiesBytes() failed: %v", err)
	}
	if len(set.Sources) != 0 || len(set.Destinations) != 0 {
		t.Errorf("set = %d sources, %d destinations; want empty", len(set.Sources), len(set.Destinations))
	}
}

func TestParser_ParseEntitiesBytes_StrictMode(t *testing.T) {
	doc := []byte(`{"sources": []}`)

	if _, err := NewParser().ParseEntitiesBytes(doc, "memory://entities.json"); err != nil {
		t.Errorf("ParseEntitiesBytes() without strict mode failed: %v", err)
	}

	_, err := NewParser().WithStrictMode(true).ParseEntitiesBytes(doc, "memory://entities.json")
	if err == nil {
		t.Fatal("ParseEntitiesBytes() with strict mode should reject unknown fields")
	}
	if !strings.Contains(err.Error(), "sources") {
		t.Errorf("error = %v, want mention of the unknown field", err)
	}
}
