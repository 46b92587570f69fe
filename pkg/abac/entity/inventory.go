package entity

// Inventory is what a loader produces: every known source and
// destination entity, in file order.
type Inventory struct {
	Sources      []*Source
	Destinations []*Destination
}

// SourceByIP returns the first source entity with the given IP, or nil.
func (inv *Inventory) SourceByIP(ip string) *Source {
	for _, src := range inv.Sources {
		if src.IP == ip {
			return src
		}
	}
	return nil
}

// DestinationByIP returns the first destination entity with the given IP,
// or nil.
func (inv *Inventory) DestinationByIP(ip string) *Destination {
	for _, dst := range inv.Destinations {
		if dst.IP == ip {
			return dst
		}
	}
	return nil
}
