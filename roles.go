package accounts

// Role is the account's role
type Role string

const (
	// RoleGuest is a guest role (i.e. view)
	RoleGuest Role = "guest"
	// RoleUser is a regular account (i.e. view, edit own content)
	RoleUser Role = "user"
	// RoleModerator can manage content
	RoleModerator Role = "moderator"
	// RoleAdmin can manage accounts and settings
	RoleAdmin Role = "admin"
)

// Permission names understood by the capability check
const (
	PermissionViewProfile   = "view_profile"
	PermissionEditProfile   = "edit_profile"
	PermissionDeleteAccount = "delete_account"
	PermissionCreatePost    = "create_post"
	PermissionEditPost      = "edit_post"
	PermissionDeletePost    = "delete_post"
	PermissionViewAllPosts  = "view_all_posts"
	PermissionManageUsers   = "manage_users"
	PermissionManageContent = "manage_content"
	PermissionViewAnalytics = "view_analytics"
	PermissionManageConfig  = "manage_settings"
)

// rolePermissions is the static role to permission mapping. Capability
// checks are driven by this table, not by any resource entity.
var rolePermissions = map[Role][]string{
	RoleAdmin: {
		PermissionViewProfile,
		PermissionEditProfile,
		PermissionDeleteAccount,
		PermissionCreatePost,
		PermissionEditPost,
		PermissionDeletePost,
		PermissionViewAllPosts,
		PermissionManageUsers,
		PermissionManageContent,
		PermissionViewAnalytics,
		PermissionManageConfig,
	},
	RoleModerator: {
		PermissionViewProfile,
		PermissionEditProfile,
		PermissionCreatePost,
		PermissionEditPost,
		PermissionDeletePost,
		PermissionViewAllPosts,
		PermissionManageContent,
	},
	RoleUser: {
		PermissionViewProfile,
		PermissionEditProfile,
		PermissionDeleteAccount,
		PermissionCreatePost,
		PermissionEditPost,
		PermissionDeletePost,
	},
	RoleGuest: {
		PermissionViewProfile,
	},
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Permissions returns the permission set granted by this role
func (r Role) Permissions() []string {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission checks if this role grants a specific permission
func (r Role) HasPermission(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleGuest:     0,
		RoleUser:      1,
		RoleModerator: 2,
		RoleAdmin:     3,
	}

	current, ok := roleHierarchy[r]
	if !ok {
		return false
	}

	required, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}

	return current >= required
}
