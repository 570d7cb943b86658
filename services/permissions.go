package services

import (
	"farmfinance/backend/models"
)

// RoleHierarchy defines the hierarchy of roles in the system
// Higher numbers have more permissions
var RoleHierarchy = map[string]int{
	models.RoleUser:  1,
	models.RoleAdmin: 2,
}

// IsRoleAtLeast checks if a role is at least at the specified level
func IsRoleAtLeast(userRole, requiredRole string) bool {
	userLevel, userExists := RoleHierarchy[userRole]
	requiredLevel, requiredExists := RoleHierarchy[requiredRole]

	// Unknown roles only match themselves
	if !userExists || !requiredExists {
		return userRole == requiredRole
	}

	return userLevel >= requiredLevel
}

// CanViewOwner reports whether caller may read the records of ownerID:
// owners see their own data, admins see everyone's.
func CanViewOwner(caller models.Identity, ownerID string) bool {
	return caller.UserID == ownerID || IsRoleAtLeast(caller.Role, models.RoleAdmin)
}

// requireOwner rejects callers that do not own a record.
func requireOwner(caller models.Identity, ownerID, what string) error {
	if caller.UserID != ownerID {
		return models.NewError(models.ErrForbidden, "Not authorized to access this "+what)
	}
	return nil
}
