package encoding

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/schema"
)

// Encoded is an attribute value resolved against the schema, ready for
// bit packing. The set of implementations is closed: SingleID,
// MultipleIDs and Numeric.
type Encoded interface {
	encoded()
}

// SingleID is the id of a single-valued categorical attribute.
type SingleID uint32

// MultipleIDs are the ids of a set-valued categorical attribute, in the
// value's storage order.
type MultipleIDs []uint32

// Numeric is an integer attribute value already validated against the
// schema's bounds.
type Numeric int64

func (SingleID) encoded()    {}
func (MultipleIDs) encoded() {}
func (Numeric) encoded()     {}

// EncodeValue resolves one attribute value against the schema. The
// dispatch is strict: a single typed attribute takes only a string
// value, a multiple typed attribute only a set, a numeric attribute
// only a number within its declared bounds. Every other pairing is a
// TypeMismatchError naming the attribute and both shapes.
func EncodeValue(m *schema.Map, attr string, v entity.Value) (Encoded, error) {
	entry, ok := m.Entry(attr)
	if !ok {
		return nil, &schema.UnknownAttributeError{Attr: attr}
	}

	switch entry.Type() {
	case schema.ValueTypeSingle:
		if s, ok := v.AsString(); ok {
			id, err := m.ValueID(attr, s)
			if err != nil {
				return nil, err
			}
			return SingleID(id), nil
		}

	case schema.ValueTypeMultiple:
		if members, ok := v.AsSet(); ok {
			ids := make(MultipleIDs, len(members))
			for i, s := range members {
				id, err := m.ValueID(attr, s)
				if err != nil {
					return nil, err
				}
				ids[i] = id
			}
			return ids, nil
		}

	case schema.ValueTypeNumeric:
		if n, ok := v.AsNumber(); ok {
			if err := checkBounds(entry, attr, n); err != nil {
				return nil, err
			}
			return Numeric(n), nil
		}
	}

	return nil, &TypeMismatchError{Attr: attr, Expected: entry.Type(), Actual: v.Kind()}
}

func checkBounds(entry *schema.Entry, attr string, n int64) error {
	min, max := entry.Bounds()
	switch {
	case min != nil && max != nil:
		if n < *min || n > *max {
			return &RangeError{Attr: attr, Value: n, Detail: fmt.Sprintf("out of range [%d, %d]", *min, *max)}
		}
	case min != nil:
		if n < *min {
			return &RangeError{Attr: attr, Value: n, Detail: fmt.Sprintf("below minimum %d", *min)}
		}
	case max != nil:
		if n > *max {
			return &RangeError{Attr: attr, Value: n, Detail: fmt.Sprintf("above maximum %d", *max)}
		}
	}
	return nil
}

// EncodedToUint32 packs an encoded value into one 32-bit word. A single
// id is the word itself; a numeric value is cast, erroring outside the
// unsigned 32-bit range; a set of ids becomes the OR of 1<<id, erroring
// on any id that has no bit to occupy.
func EncodedToUint32(v Encoded) (uint32, error) {
	switch enc := v.(type) {
	case SingleID:
		return uint32(enc), nil

	case Numeric:
		if enc < 0 || int64(enc) > int64(^uint32(0)) {
			return 0, &RangeError{Value: int64(enc), Detail: "outside u32 range"}
		}
		return uint32(enc), nil

	case MultipleIDs:
		var bits uint32
		for _, id := range enc {
			if id >= 32 {
				return 0, &RangeError{Value: int64(id), Detail: "does not fit in a 32-bit mask"}
			}
			bits |= 1 << id
		}
		return bits, nil

	default:
		return 0, fmt.Errorf("unhandled encoded value %T", v)
	}
}

// BitString renders a 32-bit word as a 32-character string of '0' and
// '1', most significant bit first. Every compiled key uses this form.
func BitString(b uint32) string {
	return fmt.Sprintf("%032b", b)
}

// EncodeSource resolves every schema-known attribute of a source
// entity. Attributes absent from the schema are skipped, so entities
// may carry fields the bit domain does not encode.
func EncodeSource(m *schema.Map, src *entity.Source) (map[entity.SourceKey]Encoded, error) {
	out := make(map[entity.SourceKey]Encoded)
	for _, key := range src.Keys() {
		if _, ok := m.Entry(string(key)); !ok {
			continue
		}
		v, _ := src.Attribute(key)
		enc, err := EncodeValue(m, string(key), v)
		if err != nil {
			return nil, err
		}
		out[key] = enc
	}
	return out, nil
}

// EncodeDestination resolves every schema-known attribute of a
// destination entity.
func EncodeDestination(m *schema.Map, dst *entity.Destination) (map[entity.DestinationKey]Encoded, error) {
	out := make(map[entity.DestinationKey]Encoded)
	for _, key := range dst.Keys() {
		if _, ok := m.Entry(string(key)); !ok {
			continue
		}
		v, _ := dst.Attribute(key)
		enc, err := EncodeValue(m, string(key), v)
		if err != nil {
			return nil, err
		}
		out[key] = enc
	}
	return out, nil
}

// SourceKeyBits renders a source entity the way the enforcement fabric
// would match it against a compiled requirement key: one 32-bit slot
// per attribute in attrOrder plus the trailing threshold slot.
// Categorical slots carry the id (single) or the 1<<id mask (multiple);
// numeric slots emit zero in place and project the value onto the
// threshold ladder under ThresholdKey. Attributes the entity does not
// carry are omitted from the map.
func SourceKeyBits(m *schema.Map, src *entity.Source, attrOrder []string, trustThresholds []int64) (map[string]string, error) {
	encoded, err := EncodeSource(m, src)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(attrOrder)+1)
	for _, name := range attrOrder {
		key, err := entity.ParseSourceKey(name)
		if err != nil {
			return nil, err
		}
		enc, ok := encoded[key]
		if !ok {
			continue
		}
		if n, isNumeric := enc.(Numeric); isNumeric {
			out[name] = BitString(0)
			out[ThresholdKey] = BitString(ValueThresholdBits(int64(n), trustThresholds))
			continue
		}
		u, err := EncodedToUint32(enc)
		if err != nil {
			return nil, err
		}
		out[name] = BitString(u)
	}
	return out, nil
}

// SourceBitStrings packs an encoded source into one 32-bit word per
// attribute, following attrOrder and skipping attributes the entity
// does not carry.
func SourceBitStrings(encoded map[entity.SourceKey]Encoded, attrOrder []string) ([]string, error) {
	out := make([]string, 0, len(attrOrder))
	for _, name := range attrOrder {
		key, err := entity.ParseSourceKey(name)
		if err != nil {
			return nil, err
		}
		enc, ok := encoded[key]
		if !ok {
			continue
		}
		u, err := EncodedToUint32(enc)
		if err != nil {
			return nil, err
		}
		out = append(out, BitString(u))
	}
	return out, nil
}
