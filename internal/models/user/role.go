package user

// User roles. RoleAdmin is unrestricted across any absolute path
// (spec.md §4.8); RoleApp is the identity a producer app authenticates
// under, confined to its own /app/<username>/... namespace by the
// handler layer rather than by role; RoleViewer is read-only query
// access with no push/register rights.
const (
	RoleAdmin  = "admin"
	RoleApp    = "app"
	RoleViewer = "viewer"
)

// Permissions over the DataHub surface.
const (
	PermPush               = "push"
	PermQuery              = "query"
	PermRegister           = "register"
	PermManageDestinations = "manage_destinations"
	PermManageConfig       = "manage_config"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermPush, PermQuery, PermRegister,
		PermManageDestinations, PermManageConfig,
	},
	RoleApp: {
		PermPush, PermQuery, PermRegister,
	},
	RoleViewer: {
		PermQuery,
	},
}

// GetRolePermissions returns all permissions for a given role
func GetRolePermissions(role string) []string {
	return RolePermissions[role]
}

// HasPermission checks if a role has a specific permission
func HasPermission(role, permission string) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetUserPermissions returns all unique permissions for a user based on their roles
func GetUserPermissions(roles []string) []string {
	// Use a map to deduplicate permissions
	permMap := make(map[string]struct{})

	for _, role := range roles {
		for _, perm := range RolePermissions[role] {
			permMap[perm] = struct{}{}
		}
	}

	// Convert map keys to slice
	perms := make([]string, 0, len(permMap))
	for perm := range permMap {
		perms = append(perms, perm)
	}

	return perms
}

// UserHasPermission checks if a user with the given roles has a specific permission
func UserHasPermission(roles []string, permission string) bool {
	for _, role := range roles {
		if HasPermission(role, permission) {
			return true
		}
	}
	return false
}

// Roles returns all valid roles
func Roles() []string {
	return []string{RoleAdmin, RoleApp, RoleViewer}
}

// Permissions returns all valid permissions
func Permissions() []string {
	return []string{
		PermPush,
		PermQuery,
		PermRegister,
		PermManageDestinations,
		PermManageConfig,
	}
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleApp, RoleViewer:
		return true
	default:
		return false
	}
}

// IsValidPermission checks if a permission is valid
func IsValidPermission(permission string) bool {
	switch permission {
	case PermPush, PermQuery, PermRegister, PermManageDestinations, PermManageConfig:
		return true
	default:
		return false
	}
}
