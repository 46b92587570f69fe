package validator

import (
	"osprey-hq/talon/pkg/abac/entity"
)

// AttrInfo describes one attribute in the condition data model.
type AttrInfo struct {
	Name        string      // Attribute name (e.g., "Src.Role")
	Kind        entity.Kind // Value kind the attribute holds
	Description string      // Human-readable description
}

// dataModel defines every attribute a policy condition may reference.
// The vocabulary is closed: LookupAttr rejects anything not listed here.
var dataModel = []*AttrInfo{
	{
		Name:        string(entity.SourceRole),
		Kind:        entity.KindString,
		Description: "Role of the requesting entity (e.g., 'student', 'faculty')",
	},
	{
		Name:        string(entity.SourceDept),
		Kind:        entity.KindString,
		Description: "Department of the requesting entity",
	},
	{
		Name:        string(entity.SourceTrustScore),
		Kind:        entity.KindNumber,
		Description: "Trust score of the requesting entity (0-100)",
	},
	{
		Name:        string(entity.SourceGroups),
		Kind:        entity.KindSet,
		Description: "Groups the requesting entity belongs to",
	},
	{
		Name:        string(entity.SourceSessionCount),
		Kind:        entity.KindNumber,
		Description: "Concurrent sessions held by the requesting entity",
	},
	{
		Name:        string(entity.DestinationType),
		Kind:        entity.KindString,
		Description: "Device class of the destination (e.g., 'printer', 'server')",
	},
	{
		Name:        string(entity.DestinationOwnerDept),
		Kind:        entity.KindString,
		Description: "Department that owns the destination",
	},
	{
		Name:        string(entity.DestinationSensitivity),
		Kind:        entity.KindNumber,
		Description: "Sensitivity level of data held by the destination",
	},
	{
		Name:        string(entity.DestinationAllowedVLANs),
		Kind:        entity.KindSet,
		Description: "VLANs permitted to reach the destination",
	},
}

var attrIndex = buildAttrIndex()

func buildAttrIndex() map[string]*AttrInfo {
	idx := make(map[string]*AttrInfo, len(dataModel))
	for _, info := range dataModel {
		idx[info.Name] = info
	}
	return idx
}

// LookupAttr finds an attribute in the data model by its full name.
// Returns the attribute info and true if found, nil and false otherwise.
func LookupAttr(name string) (*AttrInfo, bool) {
	info, ok := attrIndex[name]
	return info, ok
}

// AllAttrNames returns every attribute name in declaration order.
// This is used for error suggestions.
func AllAttrNames() []string {
	names := make([]string, len(dataModel))
	for i, info := range dataModel {
		names[i] = info.Name
	}
	return names
}
