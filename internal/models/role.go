package models

// Role is the closed set of account roles.
type Role string

// Account roles. Everything except RoleUser is a staff role.
const (
	RoleUser             Role = "user"
	RoleSuperAdmin       Role = "super_admin"
	RoleMarketingManager Role = "marketing_manager"
	RoleSupportStaff     Role = "support_staff"
)

// Permission is the closed set of staff capabilities.
type Permission string

const (
	PermManageUsers       Permission = "manage_users"
	PermManageStaff       Permission = "manage_staff"
	PermManageTasks       Permission = "manage_tasks"
	PermManageWithdrawals Permission = "manage_withdrawals"
	PermViewDashboard     Permission = "view_dashboard"
	PermManageSettings    Permission = "manage_settings"
)

// rolePermissions is the static mapping from staff role to capability set.
// Plain users carry no permissions.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermManageUsers, PermManageStaff, PermManageTasks,
		PermManageWithdrawals, PermViewDashboard, PermManageSettings,
	},
	RoleMarketingManager: {
		PermManageTasks, PermViewDashboard,
	},
	RoleSupportStaff: {
		PermManageUsers, PermManageWithdrawals, PermViewDashboard,
	},
}

// HasPermission reports whether the role carries the given capability.
func (r Role) HasPermission(p Permission) bool {
	for _, have := range rolePermissions[r] {
		if have == p {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to the administrative panel.
func (r Role) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleMarketingManager || r == RoleSupportStaff
}
