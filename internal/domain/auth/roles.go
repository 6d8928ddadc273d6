package auth

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleHRAdmin    = "HR_ADMIN"
	RoleEmployee   = "EMPLOYEE"
)

const (
	PortalAdmin    = "admin"
	PortalEmployee = "employee"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleHRAdmin, RoleEmployee:
		return true
	}
	return false
}

func IsAdminRole(role string) bool {
	return role == RoleSuperAdmin || role == RoleHRAdmin
}

// PortalAllows reports whether a role may authenticate through a portal.
// Admin-class credentials are rejected on the employee portal and vice versa.
func PortalAllows(portal, role string) bool {
	switch portal {
	case PortalAdmin:
		return IsAdminRole(role)
	case PortalEmployee:
		return role == RoleEmployee
	}
	return false
}
