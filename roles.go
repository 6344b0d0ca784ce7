package session

// UserRole is the user's role within their organization
type UserRole = string

const (
	// RoleMember is a regular organization member
	RoleMember UserRole = "MEMBER"
	// RoleProjectManager manages projects and boards
	RoleProjectManager UserRole = "PROJECT_MANAGER"
	// RoleOrgAdmin administers the whole organization
	RoleOrgAdmin UserRole = "ORG_ADMIN"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleMember, RoleProjectManager, RoleOrgAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleMember,
		RoleProjectManager,
		RoleOrgAdmin,
	}
}

// RoleIsAtLeast checks if role meets the minimum required level
func RoleIsAtLeast(role, minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleMember:         0,
		RoleProjectManager: 1,
		RoleOrgAdmin:       2,
	}

	currentLevel, exists := roleHierarchy[role]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// RoleIsAdmin reports whether the role administers the organization.
func RoleIsAdmin(role UserRole) bool {
	return role == RoleOrgAdmin
}

// RoleIsManager reports whether the role can manage projects. Admins manage
// everything a project manager does.
func RoleIsManager(role UserRole) bool {
	return role == RoleProjectManager || role == RoleOrgAdmin
}
