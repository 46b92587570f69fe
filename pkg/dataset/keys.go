package dataset

import "fmt"

// UserKey names an attribute of a lab user record. The vocabulary is
// closed, matching the university lab corpus; ParseUserKey rejects
// anything not declared here.
type UserKey string

const (
	UserPosition   UserKey = "position"
	UserDepartment UserKey = "department"
	UserCrsTaken   UserKey = "crsTaken"
	UserCrsTaught  UserKey = "crsTaught"
	UserIsChair    UserKey = "isChair"
)

// UserKeys returns every user attribute key in declaration order.
func UserKeys() []UserKey {
	return []UserKey{
		UserPosition,
		UserDepartment,
		UserCrsTaken,
		UserCrsTaught,
		UserIsChair,
	}
}

// ResourceKey names an attribute of a lab resource record.
type ResourceKey string

const (
	ResourceType        ResourceKey = "type"
	ResourceCrs         ResourceKey = "crs"
	ResourceStudent     ResourceKey = "student"
	ResourceDepartments ResourceKey = "departments"
)

// ResourceKeys returns every resource attribute key in declaration
// order.
func ResourceKeys() []ResourceKey {
	return []ResourceKey{
		ResourceType,
		ResourceCrs,
		ResourceStudent,
		ResourceDepartments,
	}
}

// UnknownKeyError reports an attribute name outside the closed
// vocabulary of its record kind.
type UnknownKeyError struct {
	Kind string
	Name string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s attribute key %q", e.Kind, e.Name)
}

// ParseUserKey converts a wire name such as "position" into a
// UserKey.
func ParseUserKey(s string) (UserKey, error) {
	for _, k := range UserKeys() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &UnknownKeyError{Kind: "user", Name: s}
}

// ParseResourceKey converts a wire name such as "type" into a
// ResourceKey.
func ParseResourceKey(s string) (ResourceKey, error) {
	for _, k := range ResourceKeys() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &UnknownKeyError{Kind: "resource", Name: s}
}
