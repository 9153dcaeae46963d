package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin           = "admin"
	RoleCareCoordinator = "care_coordinator"
	RoleClinician       = "clinician"
	RoleAnalyst         = "analyst"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

// KnownRole reports whether the role name is one this service issues.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCareCoordinator, RoleClinician, RoleAnalyst:
		return true
	}
	return false
}
