package parser

import (
	"fmt"
	"strconv"
	"strings"

	abacErrors "osprey-hq/talon/pkg/abac/errors"
	"osprey-hq/talon/pkg/abac/schema"
)

// ParseSchema loads an attribute identifier schema document. Each key is
// an attribute name and each entry declares a value type plus either an
// id-to-value table or a numeric range:
//
//	"Src.Role": {
//	    "description": {"type": "single"},
//	    "value": {"0": "student", "1": "faculty"}
//	}
//	"Src.TrustScore": {
//	    "description": {"type": "numeric"},
//	    "value": {"min": 0, "max": 100}
//	}
//
// Numeric bounds may each be omitted for an open range.
func (p *Parser) ParseSchema(path string) (*schema.Map, error) {
	data, err := p.readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseSchemaBytes(data, path)
}

// ParseSchemaBytes parses an attribute identifier schema from a byte slice.
func (p *Parser) ParseSchemaBytes(data []byte, sourcePath string) (*schema.Map, error) {
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
			Message:  fmt.Sprintf("Schema document must be an object, got %T", doc),
			Location: loc,
		}
	}

	errs := abacErrors.NewErrorList()
	entries := make(map[string]*schema.Entry, len(root))

	for _, attr := range sortedKeys(root) {
		entry, err := p.buildSchemaEntry(root[attr])
		if err != nil {
			errs.AddError(abacErrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid schema entry %q: %v", attr, err), loc)
			continue
		}
		entries[attr] = entry
	}

	if errs.HasErrors() {
		for i, e := range errs.Errors {
			errs.Errors[i] = abacErrors.AddContextToError(e)
		}
		return nil, errs
	}

	return schema.NewMap(entries), nil
}

// buildSchemaEntry constructs one schema entry. The declared
// description.type decides how the value object is read: numeric entries
// read optional min/max bounds, table entries read an id-to-value table.
func (p *Parser) buildSchemaEntry(v interface{}) (*schema.Entry, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("entry must be an object, got %T", v)
	}

	if err := p.checkEntryKeys(m, "description", "value"); err != nil {
		return nil, err
	}

	descRaw, ok := m["description"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "description")
	}
	descM, ok := descRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q must be an object, got %T", "description", descRaw)
	}

	typeStr, err := requireString(descM, "type")
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	vt, err := schema.ParseValueType(typeStr)
	if err != nil {
		return nil, err
	}

	valueRaw, ok := m["value"]
	if !ok {
		return nil, fmt.Errorf("missing required field %q", "value")
	}
	valueM, ok := valueRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q must be an object, got %T", "value", valueRaw)
	}

	if vt == schema.ValueTypeNumeric {
		return buildNumericEntry(valueM)
	}
	return buildTableEntry(vt, valueM)
}

func buildNumericEntry(valueM map[string]interface{}) (*schema.Entry, error) {
	// A table under a declared-numeric type must not silently turn into
	// an open range, so this check applies in every mode.
	if unknown := unknownRootKeys(valueM, "min", "max"); len(unknown) > 0 {
		return nil, fmt.Errorf("numeric value object allows only %q and %q, found: %s",
			"min", "max", strings.Join(unknown, ", "))
	}

	var min, max *int64
	if raw, ok := valueM["min"]; ok {
		n, err := scalarInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("min: %w", err)
		}
		min = &n
	}
	if raw, ok := valueM["max"]; ok {
		n, err := scalarInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("max: %w", err)
		}
		max = &n
	}

	return schema.NewNumericEntry(min, max)
}

func buildTableEntry(vt schema.ValueType, valueM map[string]interface{}) (*schema.Entry, error) {
	idToValue := make(map[uint32]string, len(valueM))
	for _, idStr := range sortedKeys(valueM) {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: ids must be unsigned 32-bit integers", idStr)
		}
		name, ok := valueM[idStr].(string)
		if !ok {
			return nil, fmt.Errorf("value for id %s must be a string, got %T", idStr, valueM[idStr])
		}
		idToValue[uint32(id)] = name
	}

	return schema.NewTableEntry(vt, idToValue)
}

// checkEntryKeys rejects schema entry keys outside the allowed set when
// the parser runs in strict mode.
func (p *Parser) checkEntryKeys(m map[string]interface{}, allowed ...string) error {
	if !p.strictMode {
		return nil
	}
	unknown := unknownRootKeys(m, allowed...)
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("unknown field(s): %s", strings.Join(unknown, ", "))
}
