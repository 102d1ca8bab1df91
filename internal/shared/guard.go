package shared

// Principal describes the authenticated actor of a request.
type Principal struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the principal holds the elevated role.
func (p Principal) IsAdmin() bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleStandard:
		return false
	default:
		return false
	}
}

// Authorize allows the actor to mutate a resource owned by ownerID when the
// actor is the owner or an admin. Denials wrap ErrForbidden.
func Authorize(ownerID string, actor Principal) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID != "" && actor.ID == ownerID {
		return nil
	}
	return Errorf(ErrForbidden, "User %s is not authorized to modify this resource", actor.ID)
}
