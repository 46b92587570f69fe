package schema

import (
	"fmt"
	"sort"
)

// ValueType classifies how a destination attribute is encoded.
type ValueType string

const (
	// ValueTypeSingle attributes hold exactly one categorical value.
	ValueTypeSingle ValueType = "single"
	// ValueTypeMultiple attributes hold a set of categorical values.
	ValueTypeMultiple ValueType = "multiple"
	// ValueTypeNumeric attributes hold an integer, optionally bounded.
	ValueTypeNumeric ValueType = "numeric"
)

// ParseValueType converts a string into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case ValueTypeSingle, ValueTypeMultiple, ValueTypeNumeric:
		return ValueType(s), nil
	default:
		return "", fmt.Errorf("invalid value type: %q (must be single, multiple, or numeric)", s)
	}
}

// Entry describes how one destination attribute maps onto the bit
// domain. Single and multiple typed entries carry a value/id bijection;
// numeric entries carry optional lower and upper bounds. Entries are
// immutable after construction.
type Entry struct {
	valueType ValueType
	valueToID map[string]uint32
	idToValue map[uint32]string
	min       *int64
	max       *int64
}

// NewTableEntry builds a single or multiple typed entry from an
// id-to-value table, the orientation the schema file uses. The table is
// inverted for value lookups; a value appearing under two ids breaks
// the bijection and is rejected.
func NewTableEntry(t ValueType, idToValue map[uint32]string) (*Entry, error) {
	if t != ValueTypeSingle && t != ValueTypeMultiple {
		return nil, &InvalidEntryError{Reason: fmt.Sprintf("value table not allowed for type %q", t)}
	}
	e := &Entry{
		valueType: t,
		valueToID: make(map[string]uint32, len(idToValue)),
		idToValue: make(map[uint32]string, len(idToValue)),
	}
	for id, value := range idToValue {
		if prev, ok := e.valueToID[value]; ok {
			// Deterministic message regardless of map order.
			lo, hi := prev, id
			if lo > hi {
				lo, hi = hi, lo
			}
			return nil, &InvalidEntryError{Reason: fmt.Sprintf("value %q mapped to both id %d and id %d", value, lo, hi)}
		}
		e.valueToID[value] = id
		e.idToValue[id] = value
	}
	return e, nil
}

// NewNumericEntry builds a numeric entry. Either bound may be nil,
// leaving that side unchecked.
func NewNumericEntry(min, max *int64) (*Entry, error) {
	if min != nil && max != nil && *min > *max {
		return nil, &InvalidEntryError{Reason: fmt.Sprintf("numeric bounds inverted: min %d > max %d", *min, *max)}
	}
	e := &Entry{valueType: ValueTypeNumeric}
	if min != nil {
		v := *min
		e.min = &v
	}
	if max != nil {
		v := *max
		e.max = &v
	}
	return e, nil
}

// Type reports the entry's value type.
func (e *Entry) Type() ValueType { return e.valueType }

// ValueID looks up the id for a categorical value.
func (e *Entry) ValueID(value string) (uint32, bool) {
	id, ok := e.valueToID[value]
	return id, ok
}

// ValueOf is the reverse lookup, id to value.
func (e *Entry) ValueOf(id uint32) (string, bool) {
	value, ok := e.idToValue[id]
	return value, ok
}

// Bounds returns copies of the numeric bounds. A nil bound means that
// side is unchecked.
func (e *Entry) Bounds() (min, max *int64) {
	if e.min != nil {
		v := *e.min
		min = &v
	}
	if e.max != nil {
		v := *e.max
		max = &v
	}
	return min, max
}

// Values lists the categorical values in id order. It returns nil for
// numeric entries.
func (e *Entry) Values() []string {
	if len(e.idToValue) == 0 {
		return nil
	}
	ids := make([]uint32, 0, len(e.idToValue))
	for id := range e.idToValue {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = e.idToValue[id]
	}
	return values
}

// Map holds the attribute entries for one deployment's destination
// schema.
type Map struct {
	entries map[string]*Entry
}

// NewMap builds a schema map from attribute entries. The input map is
// copied.
func NewMap(entries map[string]*Entry) *Map {
	m := &Map{entries: make(map[string]*Entry, len(entries))}
	for attr, entry := range entries {
		m.entries[attr] = entry
	}
	return m
}

// Entry returns the entry for an attribute.
func (m *Map) Entry(attr string) (*Entry, bool) {
	e, ok := m.entries[attr]
	return e, ok
}

// ValueID resolves a categorical value to its id, the lookup the
// encoder performs for single and multiple typed attributes.
func (m *Map) ValueID(attr, value string) (uint32, error) {
	e, ok := m.entries[attr]
	if !ok {
		return 0, &UnknownAttributeError{Attr: attr}
	}
	if e.valueType == ValueTypeNumeric {
		return 0, fmt.Errorf("attribute %q has no value table", attr)
	}
	id, ok := e.valueToID[value]
	if !ok {
		return 0, &UnknownValueError{Attr: attr, Value: value}
	}
	return id, nil
}

// Attrs lists the schema's attribute names in sorted order.
func (m *Map) Attrs() []string {
	attrs := make([]string, 0, len(m.entries))
	for attr := range m.entries {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}

// Len reports the number of attributes in the schema.
func (m *Map) Len() int { return len(m.entries) }
