package authz

import (
	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

// Actor is the authenticated user performing an operation. The dispatch layer
// resolves it once per request and threads it explicitly through every service
// call; nothing in this package performs I/O.
type Actor struct {
	ID     string
	Role   string
	Status string
}

// Membership is a team-member fact for the actor on the team that scopes the
// resource under decision. A nil membership means no row exists.
type Membership struct {
	TeamID string
	UserID string
	Role   string
	Status string
}

// IsAdmin reports whether the actor holds the system ADMIN role, which
// bypasses every team/project/task-scoped check.
func (a Actor) IsAdmin() bool { return a.Role == types.RoleAdmin }

// IsActive reports whether the actor's account is ACTIVE. Even admins must be
// active.
func (a Actor) IsActive() bool { return a.Status == types.UserActive }

// RequireActive is the first gate of every operation.
func RequireActive(a Actor) error {
	if !a.IsActive() {
		return apperrors.AccessDenied("account is not active")
	}
	return nil
}

// IsSelf reports whether the actor targets their own account.
func IsSelf(a Actor, userID string) bool { return a.ID == userID }

// CanAccessTeam allows system admins and anyone with a membership row on the
// team. The existence check is deliberately status-agnostic (INACTIVE and
// REMOVED members retain read access) while member listing and leaving
// require an ACTIVE membership; the asymmetry is preserved intentionally.
func CanAccessTeam(a Actor, m *Membership) bool {
	return a.IsAdmin() || m != nil
}

// CanMutateTeam covers team update, delete and status changes: system admin
// or the team OWNER.
func CanMutateTeam(a Actor, m *Membership) bool {
	return a.IsAdmin() || IsTeamOwner(m)
}

// IsTeamOwner reports whether the membership row carries the OWNER role.
func IsTeamOwner(m *Membership) bool {
	return m != nil && m.Role == types.MemberRoleOwner
}

// CanManageMembers covers add/remove/update-role on team members: OWNER only,
// system admin bypass.
func CanManageMembers(a Actor, m *Membership) bool {
	return a.IsAdmin() || IsTeamOwner(m)
}

// CanViewMembers requires an ACTIVE membership (or system admin).
func CanViewMembers(a Actor, m *Membership) bool {
	return a.IsAdmin() || (m != nil && m.Status == types.MemberActive)
}

// CanLeaveTeam requires an ACTIVE membership; admins leave through the same
// door as everyone else.
func CanLeaveTeam(m *Membership) bool {
	return m != nil && m.Status == types.MemberActive
}

// CanAccessProject follows the team access rule through the owning team.
func CanAccessProject(a Actor, m *Membership) bool {
	return CanAccessTeam(a, m)
}

// CanCreateProject is reserved for the owning team's OWNER (admin bypass).
func CanCreateProject(a Actor, m *Membership) bool {
	return a.IsAdmin() || IsTeamOwner(m)
}

// CanMutateProject covers project field updates and soft delete.
func CanMutateProject(a Actor, m *Membership) bool {
	return a.IsAdmin() || IsTeamOwner(m)
}

// CanAdministerProjectStatus gates restore/activate/archive status targets,
// which are system-admin-only.
func CanAdministerProjectStatus(a Actor) bool { return a.IsAdmin() }

// CanAccessTask resolves transitively through the task's project's team.
func CanAccessTask(a Actor, m *Membership) bool {
	return CanAccessTeam(a, m)
}

// CanEditContent allows editing comment/attachment content: author or system
// admin.
func CanEditContent(a Actor, authorID string) bool {
	return a.IsAdmin() || a.ID == authorID
}

// CanModerateContent allows deleting comments/attachments: the author, a team
// member with the OWNER or ADMIN member role, or a system admin.
func CanModerateContent(a Actor, m *Membership, authorID string) bool {
	if a.IsAdmin() || a.ID == authorID {
		return true
	}
	return m != nil && (m.Role == types.MemberRoleOwner || m.Role == types.MemberRoleAdmin)
}

// CanViewUser covers profile reads: self or system admin.
func CanViewUser(a Actor, userID string) bool {
	return a.IsAdmin() || IsSelf(a, userID)
}

// CanUpdateProfile covers mutable profile fields; role, status and
// email-verification changes require CanAdministerUsers regardless of
// self-ness.
func CanUpdateProfile(a Actor, userID string) bool {
	return a.IsAdmin() || IsSelf(a, userID)
}

// CanAdministerUsers gates role/status/email-verification changes.
func CanAdministerUsers(a Actor) bool { return a.IsAdmin() }

// IsLastAdmin reports whether a user is the last remaining active ADMIN given
// the count of *other* active admins.
func IsLastAdmin(otherActiveAdmins int) bool { return otherActiveAdmins == 0 }

// Resource kinds and actions for the generic entry point.
const (
	ResourceTeam       = "team"
	ResourceProject    = "project"
	ResourceTask       = "task"
	ResourceComment    = "comment"
	ResourceAttachment = "attachment"
)

const (
	ActionView     = "view"
	ActionMutate   = "mutate"
	ActionModerate = "moderate"
)

// Check is the resource-kind-parametrized entry point shared by all domain
// services; the named helpers above are the primitive rules.
func Check(a Actor, resource, action string, m *Membership) bool {
	switch resource {
	case ResourceTeam:
		switch action {
		case ActionView:
			return CanAccessTeam(a, m)
		case ActionMutate:
			return CanMutateTeam(a, m)
		}
	case ResourceProject:
		switch action {
		case ActionView:
			return CanAccessProject(a, m)
		case ActionMutate:
			return CanMutateProject(a, m)
		}
	case ResourceTask:
		switch action {
		case ActionView, ActionMutate:
			return CanAccessTask(a, m)
		}
	case ResourceComment, ResourceAttachment:
		switch action {
		case ActionView:
			return CanAccessTask(a, m)
		}
	}
	return false
}
