package entity

// SourceKey names an attribute of a source entity. The vocabulary is
// closed: ParseSourceKey rejects anything not declared here, so a typo in
// an entity file or policy surfaces at load time instead of silently
// never matching.
type SourceKey string

const (
	SourceRole         SourceKey = "Src.Role"
	SourceDept         SourceKey = "Src.Dept"
	SourceTrustScore   SourceKey = "Src.TrustScore"
	SourceGroups       SourceKey = "Src.Groups"
	SourceSessionCount SourceKey = "Src.SessionCount"
)

// DestinationKey names an attribute of a destination entity.
type DestinationKey string

const (
	DestinationType         DestinationKey = "Dst.Type"
	DestinationOwnerDept    DestinationKey = "Dst.OwnerDept"
	DestinationSensitivity  DestinationKey = "Dst.Sensitivity"
	DestinationAllowedVLANs DestinationKey = "Dst.AllowedVLANs"
)

// SourceKeys returns every source attribute key in declaration order.
func SourceKeys() []SourceKey {
	return []SourceKey{
		SourceRole,
		SourceDept,
		SourceTrustScore,
		SourceGroups,
		SourceSessionCount,
	}
}

// DestinationKeys returns every destination attribute key in declaration
// order.
func DestinationKeys() []DestinationKey {
	return []DestinationKey{
		DestinationType,
		DestinationOwnerDept,
		DestinationSensitivity,
		DestinationAllowedVLANs,
	}
}

// ParseSourceKey converts a wire name such as "Src.Role" into a SourceKey.
func ParseSourceKey(s string) (SourceKey, error) {
	switch SourceKey(s) {
	case SourceRole, SourceDept, SourceTrustScore, SourceGroups, SourceSessionCount:
		return SourceKey(s), nil
	default:
		return "", &UnknownKeyError{Key: s, Entity: "source"}
	}
}

// ParseDestinationKey converts a wire name such as "Dst.Type" into a
// DestinationKey.
func ParseDestinationKey(s string) (DestinationKey, error) {
	switch DestinationKey(s) {
	case DestinationType, DestinationOwnerDept, DestinationSensitivity, DestinationAllowedVLANs:
		return DestinationKey(s), nil
	default:
		return "", &UnknownKeyError{Key: s, Entity: "destination"}
	}
}
