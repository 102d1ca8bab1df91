package shared

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// ParseRole converts raw input into a Role. Empty input yields RoleStandard.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleStandard:
		return RoleStandard, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", Errorf(ErrValidation, "%s is not a valid role", raw)
	}
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleStandard, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("shared: invalid role %q", string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
