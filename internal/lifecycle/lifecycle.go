// Package lifecycle holds the per-entity status transition tables. Validators
// are pure: they decide on (from, to) alone, while guards that need counts or
// actor identity (last admin, last owner) live with the services that can
// gather those facts.
package lifecycle

import (
	"time"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

// userTransitions: ACTIVE <-> INACTIVE, ACTIVE <-> SUSPENDED, any non-deleted
// state can be soft-deleted, DELETED only restores back to ACTIVE.
var userTransitions = map[string]map[string]struct{}{
	types.UserActive: {
		types.UserInactive:  {},
		types.UserSuspended: {},
		types.UserDeleted:   {},
	},
	types.UserInactive: {
		types.UserActive:  {},
		types.UserDeleted: {},
	},
	types.UserSuspended: {
		types.UserActive:  {},
		types.UserDeleted: {},
	},
	types.UserDeleted: {
		types.UserActive: {},
	},
}

// teamTransitions: soft delete and restore only. ARCHIVED exists in the enum
// but no transition is wired to it.
var teamTransitions = map[string]map[string]struct{}{
	types.TeamActive: {
		types.TeamDeleted: {},
	},
	types.TeamDeleted: {
		types.TeamActive: {},
	},
}

// memberTransitions: explicit removal or self-initiated leave from ACTIVE;
// INACTIVE members return to ACTIVE on team restore.
var memberTransitions = map[string]map[string]struct{}{
	types.MemberActive: {
		types.MemberRemoved:  {},
		types.MemberInactive: {},
	},
	types.MemberInactive: {
		types.MemberActive: {},
	},
}

// projectSources lists, per target status, the source statuses that admit it.
// COMPLETED appears as a source for ARCHIVED but no transition reaches it, and
// ON_HOLD is enterable only as an initial status; both are deliberate.
var projectSources = map[string]map[string]struct{}{
	types.ProjectPlanned: {
		types.ProjectDeleted:  {},
		types.ProjectArchived: {},
	},
	types.ProjectActive: {
		types.ProjectPlanned: {},
		types.ProjectOnHold:  {},
	},
	types.ProjectArchived: {
		types.ProjectCompleted: {},
		types.ProjectOnHold:    {},
	},
	types.ProjectDeleted: {
		types.ProjectPlanned:   {},
		types.ProjectActive:    {},
		types.ProjectCompleted: {},
		types.ProjectOnHold:    {},
		types.ProjectArchived:  {},
	},
}

// allowedInitialProjectStatuses restricts project creation; terminal-ish
// states cannot be the starting point.
var allowedInitialProjectStatuses = map[string]struct{}{
	types.ProjectPlanned: {},
	types.ProjectActive:  {},
	types.ProjectOnHold:  {},
}

func canTransition(table map[string]map[string]struct{}, from, to string) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// ValidateUserTransition checks the user status table.
func ValidateUserTransition(from, to string) error {
	if !types.IsValidUserStatus(to) {
		return apperrors.InvalidInput("unknown user status " + to)
	}
	if !canTransition(userTransitions, from, to) {
		return apperrors.InvalidTransition("user", from, to)
	}
	return nil
}

// ValidateTeamTransition checks the team status table.
func ValidateTeamTransition(from, to string) error {
	if !canTransition(teamTransitions, from, to) {
		return apperrors.InvalidTransition("team", from, to)
	}
	return nil
}

// ValidateMemberTransition checks the team-member status table.
func ValidateMemberTransition(from, to string) error {
	if !types.IsValidMemberStatus(to) {
		return apperrors.InvalidInput("unknown member status " + to)
	}
	if !canTransition(memberTransitions, from, to) {
		return apperrors.InvalidTransition("team member", from, to)
	}
	return nil
}

// ValidateProjectTransition checks the target-dependent project table.
// A same-state transition is always rejected.
func ValidateProjectTransition(from, to string) error {
	if !types.IsValidProjectStatus(to) {
		return apperrors.InvalidInput("unknown project status " + to)
	}
	if from == to {
		return apperrors.InvalidTransition("project", from, to)
	}
	sources, ok := projectSources[to]
	if !ok {
		return apperrors.InvalidTransition("project", from, to)
	}
	if _, ok := sources[from]; !ok {
		return apperrors.InvalidTransition("project", from, to)
	}
	return nil
}

// InitialProjectStatus resolves the creation status: empty defaults to
// PLANNED, anything outside {PLANNED, ACTIVE, ON_HOLD} is refused.
func InitialProjectStatus(requested string) (string, error) {
	if requested == "" {
		return types.ProjectPlanned, nil
	}
	if _, ok := allowedInitialProjectStatuses[requested]; !ok {
		return "", apperrors.ErrInvalidProjectStatus
	}
	return requested, nil
}

// ValidateTaskStatus admits any known status; tasks have no transition table,
// only the completion timestamp side effect.
func ValidateTaskStatus(to string) error {
	if !types.IsValidTaskStatus(to) {
		return apperrors.InvalidInput("unknown task status " + to)
	}
	return nil
}

// TaskCompletionTimestamp returns the CompletedAt value after a status
// change: entering DONE stamps now, leaving it clears the stamp.
func TaskCompletionTimestamp(newStatus string, current *time.Time, now time.Time) *time.Time {
	if newStatus == types.TaskDone {
		if current != nil {
			return current
		}
		return &now
	}
	return nil
}

// ValidateContentDelete guards the single ACTIVE -> DELETED transition of
// comments and attachments; deleting twice fails.
func ValidateContentDelete(status string) error {
	if status == types.ContentDeleted {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

// ValidateProjectDates enforces the date rules at creation/update time: each
// supplied date must be today or later, and end must not precede start.
// Comparison is day-granular in UTC.
func ValidateProjectDates(start, end *time.Time, now time.Time) error {
	today := now.UTC().Truncate(24 * time.Hour)
	if start != nil && start.UTC().Truncate(24*time.Hour).Before(today) {
		return apperrors.InvalidDate("start date must not be in the past")
	}
	if end != nil && end.UTC().Truncate(24*time.Hour).Before(today) {
		return apperrors.InvalidDate("end date must not be in the past")
	}
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.InvalidDate("end date must not precede start date")
	}
	return nil
}
