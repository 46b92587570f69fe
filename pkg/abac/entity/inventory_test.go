package entity

import "testing"

func testInventory() *Inventory {
	return &Inventory{
		Sources: []*Source{
			NewSource("10.0.10.21", "faculty workstation", map[SourceKey]Value{
				SourceRole:   String("faculty"),
				SourceGroups: Set("it", "gradcommittee"),
			}),
			NewSource("10.0.30.7", "contractor laptop", map[SourceKey]Value{
				SourceRole: String("contractor"),
			}),
		},
		Destinations: []*Destination{
			NewDestination("10.1.10.5", "floor printer", map[DestinationKey]Value{
				DestinationType: String("printer"),
			}),
		},
	}
}

func TestInventorySourceByIP(t *testing.T) {
	inv := testInventory()

	src := inv.SourceByIP("10.0.10.21")
	if src == nil {
		t.Fatal("SourceByIP(10.0.10.21) = nil, want source")
	}
	if got, ok := src.Attribute(SourceGroups); !ok || !got.Equal(Set("it", "gradcommittee")) {
		t.Errorf("Src.Groups = %v, want %v", got, Set("it", "gradcommittee"))
	}

	if got := inv.SourceByIP("10.9.9.9"); got != nil {
		t.Errorf("SourceByIP(unknown) = %v, want nil", got)
	}
}

func TestInventoryDestinationByIP(t *testing.T) {
	inv := testInventory()

	dst := inv.DestinationByIP("10.1.10.5")
	if dst == nil {
		t.Fatal("DestinationByIP(10.1.10.5) = nil, want destination")
	}
	if got, ok := dst.Attribute(DestinationType); !ok || !got.Equal(String("printer")) {
		t.Errorf("Dst.Type = %v, want %v", got, String("printer"))
	}

	if got := inv.DestinationByIP("10.9.9.9"); got != nil {
		t.Errorf("DestinationByIP(unknown) = %v, want nil", got)
	}
}
