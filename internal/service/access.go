package service

import (
	"context"
	"strings"
)

// Roles recognised by grade reporting.
const (
	RoleStudent            = "student"
	RoleTeachingAssistant  = "teaching_assistant"
	RoleInstructor         = "instructor"
	RoleAdministrator      = "administrator"
	RoleSuperAdministrator = "super_administrator"
)

// Capability names an action guarded by the authorizer.
type Capability string

const (
	CapabilityViewGrades Capability = "view_grades"
	CapabilityEditGrades Capability = "edit_grades"
)

// InstructorRoles may view every report of an assignment.
var InstructorRoles = []string{RoleInstructor, RoleTeachingAssistant, RoleAdministrator, RoleSuperAdministrator}

var roleAliases = map[string]string{
	"ta":          RoleTeachingAssistant,
	"teacher":     RoleInstructor,
	"admin":       RoleAdministrator,
	"super_admin": RoleSuperAdministrator,
	"superadmin":  RoleSuperAdministrator,
}

// CanonicalRole lower-cases role and resolves the short aliases issued by the
// identity provider.
func CanonicalRole(role string) string {
	normalized := strings.ToLower(strings.TrimSpace(role))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if alias, ok := roleAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// IsInstructorRole reports whether role belongs to the instructor tier.
func IsInstructorRole(role string) bool {
	canonical := CanonicalRole(role)
	for _, candidate := range InstructorRoles {
		if candidate == canonical {
			return true
		}
	}
	return false
}

// Authorizer decides whether a role holds capabilities on a resource.
type Authorizer interface {
	IsAuthorized(ctx context.Context, role string, resourceID uint, capabilities ...Capability) bool
}

// RoleAuthorizer grants capabilities from a static role table.
type RoleAuthorizer struct {
	grants map[string]map[Capability]struct{}
}

// NewRoleAuthorizer grants view and edit rights to the instructor tier.
func NewRoleAuthorizer() *RoleAuthorizer {
	grants := make(map[string]map[Capability]struct{}, len(InstructorRoles))
	for _, role := range InstructorRoles {
		grants[role] = map[Capability]struct{}{
			CapabilityViewGrades: {},
			CapabilityEditGrades: {},
		}
	}
	return &RoleAuthorizer{grants: grants}
}

// IsAuthorized requires every capability. Grants are global per role, so
// resourceID is ignored.
func (a *RoleAuthorizer) IsAuthorized(_ context.Context, role string, _ uint, capabilities ...Capability) bool {
	granted, ok := a.grants[CanonicalRole(role)]
	if !ok {
		return false
	}
	for _, capability := range capabilities {
		if _, ok := granted[capability]; !ok {
			return false
		}
	}
	return true
}
