package validator

import (
	"fmt"

	"osprey-hq/talon/pkg/abac/entity"
	abacErrors "osprey-hq/talon/pkg/abac/errors"
	"osprey-hq/talon/pkg/abac/schema"
)

// DataValidator validates concrete data against the attribute data model.
// It checks that entity attribute values carry the declared kind and, when
// an identifier schema is supplied, that categorical values appear in the
// schema's id tables and numeric values fall inside the schema's bounds.
type DataValidator struct {
	errors *abacErrors.ErrorList
}

// NewDataValidator creates a new data validator.
func NewDataValidator() *DataValidator {
	return &DataValidator{
		errors: abacErrors.NewErrorList(),
	}
}

// ValidateEntities validates an entity inventory. The schema map may be
// nil; schema checks are then skipped and only kind checks run.
func (v *DataValidator) ValidateEntities(set *entity.Inventory, schemaMap *schema.Map) error {
	v.errors = abacErrors.NewErrorList()
	if set == nil {
		return nil
	}

	for _, src := range set.Sources {
		for _, key := range src.Keys() {
			value, _ := src.Attribute(key)
			v.validateAttributeValue("Source", src.IP, string(key), value, schemaMap)
		}
	}

	for _, dst := range set.Destinations {
		for _, key := range dst.Keys() {
			value, _ := dst.Attribute(key)
			v.validateAttributeValue("Destination", dst.IP, string(key), value, schemaMap)
		}
	}

	return v.errors.ToError()
}

// validateAttributeValue checks one entity attribute against the data
// model kind and the schema entry for that attribute, if any.
func (v *DataValidator) validateAttributeValue(kind, ip, attr string, value entity.Value, schemaMap *schema.Map) {
	info, ok := LookupAttr(attr)
	if !ok {
		// Unknown keys cannot be constructed through the entity package;
		// nothing further to check.
		return
	}

	if value.Kind() != info.Kind {
		v.errors.AddError(
			abacErrors.ErrorTypeValidation,
			fmt.Sprintf("%s entity %q attribute %q holds a %s, want %s",
				kind, ip, attr, value.Kind(), info.Kind),
			abacErrors.Location{},
		)
		return
	}

	if schemaMap == nil {
		return
	}
	entry, ok := schemaMap.Entry(attr)
	if !ok {
		return
	}

	switch entry.Type() {
	case schema.ValueTypeSingle:
		s, _ := value.AsString()
		if _, ok := entry.ValueID(s); !ok {
			v.errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeValidation,
				fmt.Sprintf("%s entity %q attribute %q value %q is not in the schema",
					kind, ip, attr, s),
				abacErrors.Location{},
				abacErrors.SuggestValue(s, entry.Values()),
			)
		}

	case schema.ValueTypeMultiple:
		members, _ := value.AsSet()
		for _, member := range members {
			if _, ok := entry.ValueID(member); !ok {
				v.errors.AddErrorWithSuggestion(
					abacErrors.ErrorTypeValidation,
					fmt.Sprintf("%s entity %q attribute %q member %q is not in the schema",
						kind, ip, attr, member),
					abacErrors.Location{},
					abacErrors.SuggestValue(member, entry.Values()),
				)
			}
		}

	case schema.ValueTypeNumeric:
		n, _ := value.AsNumber()
		min, max := entry.Bounds()
		if min != nil && n < *min {
			v.errors.AddError(
				abacErrors.ErrorTypeValidation,
				fmt.Sprintf("%s entity %q attribute %q value %d is below the schema minimum %d",
					kind, ip, attr, n, *min),
				abacErrors.Location{},
			)
		}
		if max != nil && n > *max {
			v.errors.AddError(
				abacErrors.ErrorTypeValidation,
				fmt.Sprintf("%s entity %q attribute %q value %d is above the schema maximum %d",
					kind, ip, attr, n, *max),
				abacErrors.Location{},
			)
		}
	}
}

// ValidateSchema checks an identifier schema against the data model:
// every schema attribute must exist in the model and its declared value
// type must agree with the attribute kind.
func (v *DataValidator) ValidateSchema(schemaMap *schema.Map) error {
	v.errors = abacErrors.NewErrorList()
	if schemaMap == nil {
		return nil
	}

	for _, attr := range schemaMap.Attrs() {
		entry, _ := schemaMap.Entry(attr)

		info, ok := LookupAttr(attr)
		if !ok {
			v.errors.AddErrorWithSuggestion(
				abacErrors.ErrorTypeValidation,
				fmt.Sprintf("Schema defines unknown attribute %q", attr),
				abacErrors.Location{},
				abacErrors.SuggestAttributeKey(attr, AllAttrNames()),
			)
			continue
		}

		want := schemaTypeForKind(info.Kind)
		if entry.Type() != want {
			v.errors.AddError(
				abacErrors.ErrorTypeValidation,
				fmt.Sprintf("Schema declares attribute %q as %q, but its kind %s requires %q",
					attr, entry.Type(), info.Kind, want),
				abacErrors.Location{},
			)
		}
	}

	return v.errors.ToError()
}

// schemaTypeForKind maps an attribute kind onto the schema value type
// that can encode it.
func schemaTypeForKind(kind entity.Kind) schema.ValueType {
	switch kind {
	case entity.KindNumber:
		return schema.ValueTypeNumeric
	case entity.KindSet:
		return schema.ValueTypeMultiple
	default:
		return schema.ValueTypeSingle
	}
}
