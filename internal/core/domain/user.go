package domain

import "strings"

const (
	RoleSuperAdmin = "superadmin"
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleStudent    = "student"
	RoleParent     = "parent"
)

const SignInPath = "/signin"

// wildcardRoles are granted every module without asking the RBAC service.
var wildcardRoles = map[string]struct{}{
	RoleSuperAdmin: {},
	RoleOwner:      {},
}

// IsWildcardRole reports whether role receives the "ALL" module grant.
func IsWildcardRole(role string) bool {
	_, ok := wildcardRoles[strings.ToLower(role)]
	return ok
}

// DashboardPath resolves the landing route for a role.
func DashboardPath(role string) string {
	switch strings.ToLower(role) {
	case RoleOwner, RoleSuperAdmin:
		return "/owner/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleTeacher:
		return "/teacher/dashboard"
	case RoleStudent:
		return "/student/dashboard"
	case RoleParent:
		return "/parent/dashboard"
	default:
		return "/"
	}
}

// User is the signed-in account as reported by the school API.
// Profile carries any extra attributes the API returns; they round-trip untouched.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email,omitempty"`
	Username string         `json:"username,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Name     string         `json:"name,omitempty"`
	Role     string         `json:"role"`
	CampusID string         `json:"campusId,omitempty"`
	Profile  map[string]any `json:"profile,omitempty"`
}

// Clone returns a deep copy of the profile map so callers can't alias state.
func (u User) Clone() User {
	out := u
	if u.Profile != nil {
		out.Profile = make(map[string]any, len(u.Profile))
		for k, v := range u.Profile {
			out.Profile[k] = v
		}
	}
	return out
}

// UserPatch is a shallow partial update. Nil fields are left as they are;
// Profile keys overwrite matching keys.
type UserPatch struct {
	Email    *string        `json:"email,omitempty"`
	Username *string        `json:"username,omitempty"`
	Phone    *string        `json:"phone,omitempty"`
	Name     *string        `json:"name,omitempty"`
	CampusID *string        `json:"campusId,omitempty"`
	Profile  map[string]any `json:"profile,omitempty"`
}

// Apply merges p into u and returns the result.
func (p UserPatch) Apply(u User) User {
	out := u.Clone()
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Username != nil {
		out.Username = *p.Username
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.CampusID != nil {
		out.CampusID = *p.CampusID
	}
	if len(p.Profile) > 0 {
		if out.Profile == nil {
			out.Profile = make(map[string]any, len(p.Profile))
		}
		for k, v := range p.Profile {
			out.Profile[k] = v
		}
	}
	return out
}
