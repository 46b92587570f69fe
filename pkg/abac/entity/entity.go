package entity

// Source is a connection originator: a user, service account, or device
// attempting to reach a destination. Attributes are fixed at construction.
type Source struct {
	IP          string
	Description string
	attrs       map[SourceKey]Value
}

// NewSource builds a source entity. The attribute map is copied; a nil map
// yields an entity with no attributes.
func NewSource(ip, description string, attrs map[SourceKey]Value) *Source {
	copied := make(map[SourceKey]Value, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Source{IP: ip, Description: description, attrs: copied}
}

// Attribute returns the value stored under key. The second result is false
// when the entity does not carry the attribute.
func (s *Source) Attribute(key SourceKey) (Value, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

// Keys returns the attribute keys present on this entity, in the fixed
// declaration order of the key vocabulary.
func (s *Source) Keys() []SourceKey {
	keys := make([]SourceKey, 0, len(s.attrs))
	for _, k := range SourceKeys() {
		if _, ok := s.attrs[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Destination is a network endpoint a source may attempt to reach.
// Attributes are fixed at construction.
type Destination struct {
	IP          string
	Description string
	attrs       map[DestinationKey]Value
}

// NewDestination builds a destination entity. The attribute map is copied;
// a nil map yields an entity with no attributes.
func NewDestination(ip, description string, attrs map[DestinationKey]Value) *Destination {
	copied := make(map[DestinationKey]Value, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Destination{IP: ip, Description: description, attrs: copied}
}

// Attribute returns the value stored under key. The second result is false
// when the entity does not carry the attribute.
func (d *Destination) Attribute(key DestinationKey) (Value, bool) {
	v, ok := d.attrs[key]
	return v, ok
}

// Keys returns the attribute keys present on this entity, in the fixed
// declaration order of the key vocabulary.
func (d *Destination) Keys() []DestinationKey {
	keys := make([]DestinationKey, 0, len(d.attrs))
	for _, k := range DestinationKeys() {
		if _, ok := d.attrs[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Environment supplies ambient values for Env references. Keys are the
// full reference name as written in policy conditions, e.g. "Env.MFA".
type Environment map[string]Value

// Lookup returns the value stored under the full reference name.
func (e Environment) Lookup(name string) (Value, bool) {
	v, ok := e[name]
	return v, ok
}
