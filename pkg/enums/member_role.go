package enums

import "fmt"

// MemberRole maps to the member_role enum in Postgres. Admins and managers
// hold the global project-view permission; members only see projects they
// are explicitly assigned to.
type MemberRole string

const (
	RoleAdmin   MemberRole = "admin"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"
)

var validMemberRoles = []MemberRole{
	RoleAdmin,
	RoleManager,
	RoleMember,
}

// IsValid reports whether the value matches the canonical member_role enum.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HasGlobalProjectView reports whether the role can read every project
// without a per-project assignment.
func (r MemberRole) HasGlobalProjectView() bool {
	return r == RoleAdmin || r == RoleManager
}

// ParseMemberRole converts raw input into MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
