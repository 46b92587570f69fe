package parser

import (
	"errors"
	"fmt"
	"sort"

	"osprey-hq/talon/pkg/abac/entity"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
)

// ParseEntities loads an entity inventory document:
//
//	{"source_entities": [...], "destination_entities": [...]}
//
// Each entity carries an "ip", an optional "description", and an
// "attributes" object keyed by the fixed attribute vocabulary. Unknown
// attribute keys are rejected here, at the loading boundary, so a typo
// surfaces immediately instead of silently never matching.
func (p *Parser) ParseEntities(path string) (*entity.Inventory, error) {
	data, err := p.readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseEntitiesBytes(data, path)
}

// ParseEntitiesBytes parses an entity inventory document from a byte slice.
func (p *Parser) ParseEntitiesBytes(data []byte, sourcePath string) (*entity.Inventory, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &abacErrors.Error{
			Type:    abacErrors.ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: abacErrors.Location{
				File: sourcePath,
			},
		}
	}

	doc, perr := decodeDocument(data, sourcePath)
	if perr != nil {
		return nil, perr
	}

	loc := abacErrors.Location{File: sourcePath, Line: 1, Column: 1}

	root, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &abacErrors.Error{
			Type:     abacErrors.ErrorTypeStructural,
			Message:  fmt.Sprintf("Entity document must be an object, got %T", doc),
			Location: loc,
		}
	}

	errs := abacErrors.NewErrorList()
	set := &entity.Inventory{}

	if p.strictMode {
		unknown := unknownRootKeys(root, "source_entities", "destination_entities")
		for _, key := range unknown {
			errs.AddError(abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Unknown field %q in entity document", key), loc)
		}
	}

	if raw, ok := root["source_entities"]; ok {
		arr, arrOK := raw.([]interface{})
		if !arrOK {
			errs.AddError(abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Field 'source_entities' must be an array, got %T", raw), loc)
		} else {
			for i, ev := range arr {
				src, err := buildSourceEntity(ev)
				if err != nil {
					addEntityError(errs, "source", i, err, loc)
					continue
				}
				set.Sources = append(set.Sources, src)
			}
		}
	}

	if raw, ok := root["destination_entities"]; ok {
		arr, arrOK := raw.([]interface{})
		if !arrOK {
			errs.AddError(abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Field 'destination_entities' must be an array, got %T", raw), loc)
		} else {
			for i, ev := range arr {
				dst, err := buildDestinationEntity(ev)
				if err != nil {
					addEntityError(errs, "destination", i, err, loc)
					continue
				}
				set.Destinations = append(set.Destinations, dst)
			}
		}
	}

	if errs.HasErrors() {
		for i, e := range errs.Errors {
			errs.Errors[i] = abacErrors.AddContextToError(e)
		}
		return nil, errs
	}

	return set, nil
}

// addEntityError records an entity construction failure, attaching an
// attribute-key suggestion when the cause was an unknown key.
func addEntityError(errs *abacErrors.ErrorList, kind string, index int, err error, loc abacErrors.Location) {
	message := fmt.Sprintf("Invalid %s entity at index %d: %v", kind, index, err)

	var keyErr *entity.UnknownKeyError
	if errors.As(err, &keyErr) {
		valid := sourceKeyNames()
		if kind == "destination" {
			valid = destinationKeyNames()
		}
		errs.AddErrorWithSuggestion(abacErrors.ErrorTypeStructural,
			message, loc,
			abacErrors.SuggestAttributeKey(keyErr.Key, valid))
		return
	}

	errs.AddError(abacErrors.ErrorTypeStructural, message, loc)
}

func buildSourceEntity(v interface{}) (*entity.Source, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("entity must be an object, got %T", v)
	}

	ip, err := requireString(m, "ip")
	if err != nil {
		return nil, err
	}
	description, err := optionalString(m, "description")
	if err != nil {
		return nil, err
	}

	attrs := make(map[entity.SourceKey]entity.Value)
	rawAttrs, ok := m["attributes"]
	if ok {
		am, amOK := rawAttrs.(map[string]interface{})
		if !amOK {
			return nil, fmt.Errorf("field %q must be an object, got %T", "attributes", rawAttrs)
		}
		for _, name := range sortedKeys(am) {
			key, err := entity.ParseSourceKey(name)
			if err != nil {
				return nil, err
			}
			val, err := attributeValue(am[name])
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			attrs[key] = val
		}
	}

	return entity.NewSource(ip, description, attrs), nil
}

func buildDestinationEntity(v interface{}) (*entity.Destination, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("entity must be an object, got %T", v)
	}

	ip, err := requireString(m, "ip")
	if err != nil {
		return nil, err
	}
	description, err := optionalString(m, "description")
	if err != nil {
		return nil, err
	}

	attrs := make(map[entity.DestinationKey]entity.Value)
	rawAttrs, ok := m["attributes"]
	if ok {
		am, amOK := rawAttrs.(map[string]interface{})
		if !amOK {
			return nil, fmt.Errorf("field %q must be an object, got %T", "attributes", rawAttrs)
		}
		for _, name := range sortedKeys(am) {
			key, err := entity.ParseDestinationKey(name)
			if err != nil {
				return nil, err
			}
			val, err := attributeValue(am[name])
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			attrs[key] = val
		}
	}

	return entity.NewDestination(ip, description, attrs), nil
}

// attributeValue converts a decoded document value into an attribute
// value. Strings, integers, booleans, and arrays of strings are accepted.
func attributeValue(v interface{}) (entity.Value, error) {
	switch val := v.(type) {
	case string:
		return entity.String(val), nil

	case bool:
		return entity.Bool(val), nil

	case []interface{}:
		members := make([]string, 0, len(val))
		for i, mv := range val {
			s, ok := mv.(string)
			if !ok {
				return entity.Value{}, fmt.Errorf("set member at index %d must be a string, got %T", i, mv)
			}
			members = append(members, s)
		}
		return entity.Set(members...), nil

	case map[string]interface{}:
		return entity.Value{}, fmt.Errorf("objects are not valid attribute values")

	case nil:
		return entity.Value{}, fmt.Errorf("attribute value must not be null")

	default:
		n, err := scalarInt64(v)
		if err != nil {
			return entity.Value{}, err
		}
		return entity.Number(n), nil
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unknownRootKeys(m map[string]interface{}, allowed ...string) []string {
	var unknown []string
	for key := range m {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func sourceKeyNames() []string {
	keys := entity.SourceKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return names
}

func destinationKeyNames() []string {
	keys := entity.DestinationKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return names
}
