package inventory

import (
	"encoding/json"
	"fmt"

	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/abac/parser"
)

// attributeDoc converts an attribute value into its wire form.
func attributeDoc(v entity.Value) (interface{}, error) {
	switch v.Kind() {
	case entity.KindString:
		s, _ := v.AsString()
		return s, nil
	case entity.KindNumber:
		n, _ := v.AsNumber()
		return n, nil
	case entity.KindSet:
		members, _ := v.AsSet()
		return members, nil
	case entity.KindBool:
		b, _ := v.AsBool()
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported attribute kind %v", v.Kind())
	}
}

// sourceAttributesJSON renders a source entity's attributes as the
// same JSON object the entity file format uses.
func sourceAttributesJSON(src *entity.Source) ([]byte, error) {
	attrs := make(map[string]interface{})
	for _, key := range src.Keys() {
		v, _ := src.Attribute(key)
		doc, err := attributeDoc(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs[string(key)] = doc
	}
	return json.Marshal(attrs)
}

// destinationAttributesJSON renders a destination entity's attributes
// as the same JSON object the entity file format uses.
func destinationAttributesJSON(dst *entity.Destination) ([]byte, error) {
	attrs := make(map[string]interface{})
	for _, key := range dst.Keys() {
		v, _ := dst.Attribute(key)
		doc, err := attributeDoc(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs[string(key)] = doc
	}
	return json.Marshal(attrs)
}

// entityDoc is the wire shape of one stored entity row.
type entityDoc struct {
	IP          string          `json:"ip"`
	Description string          `json:"description,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// decodeSourceRow rebuilds a source entity from its stored columns.
// The row goes back through the entity parser, so attribute JSON that
// drifted from the key vocabulary fails here instead of surfacing as
// a bad compile later.
func decodeSourceRow(ip, description string, attributes []byte) (*entity.Source, error) {
	set, err := parseRow("source_entities", entityDoc{
		IP:          ip,
		Description: description,
		Attributes:  attributes,
	})
	if err != nil {
		return nil, err
	}
	if len(set.Sources) != 1 {
		return nil, fmt.Errorf("inventory row %q did not decode to one source entity", ip)
	}
	return set.Sources[0], nil
}

// decodeDestinationRow rebuilds a destination entity from its stored
// columns.
func decodeDestinationRow(ip, description string, attributes []byte) (*entity.Destination, error) {
	set, err := parseRow("destination_entities", entityDoc{
		IP:          ip,
		Description: description,
		Attributes:  attributes,
	})
	if err != nil {
		return nil, err
	}
	if len(set.Destinations) != 1 {
		return nil, fmt.Errorf("inventory row %q did not decode to one destination entity", ip)
	}
	return set.Destinations[0], nil
}

// parseRow wraps one entity row in the entity file format and parses
// it.
func parseRow(section string, doc entityDoc) (*entity.Inventory, error) {
	wrapped, err := json.Marshal(map[string]interface{}{
		section: []entityDoc{doc},
	})
	if err != nil {
		return nil, err
	}
	return parser.NewParser().ParseEntitiesBytes(wrapped, "inventory:"+doc.IP)
}
