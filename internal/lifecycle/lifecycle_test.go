package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

func TestUserTransitions(t *testing.T) {
	allowed := [][2]string{
		{types.UserActive, types.UserInactive},
		{types.UserActive, types.UserSuspended},
		{types.UserActive, types.UserDeleted},
		{types.UserInactive, types.UserActive},
		{types.UserInactive, types.UserDeleted},
		{types.UserSuspended, types.UserActive},
		{types.UserSuspended, types.UserDeleted},
		{types.UserDeleted, types.UserActive},
	}
	isAllowed := func(from, to string) bool {
		for _, pair := range allowed {
			if pair[0] == from && pair[1] == to {
				return true
			}
		}
		return false
	}

	for _, from := range types.ValidUserStatuses {
		for _, to := range types.ValidUserStatuses {
			err := ValidateUserTransition(from, to)
			if isAllowed(from, to) {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.Error(t, err, "%s -> %s", from, to)
			}
		}
	}

	assert.Error(t, ValidateUserTransition(types.UserActive, "BOGUS"))
}

func TestTeamTransitions(t *testing.T) {
	assert.NoError(t, ValidateTeamTransition(types.TeamActive, types.TeamDeleted))
	assert.NoError(t, ValidateTeamTransition(types.TeamDeleted, types.TeamActive))

	assert.Error(t, ValidateTeamTransition(types.TeamActive, types.TeamActive))
	assert.Error(t, ValidateTeamTransition(types.TeamDeleted, types.TeamDeleted))
	// ARCHIVED exists in the enum but nothing is wired to it.
	assert.Error(t, ValidateTeamTransition(types.TeamActive, types.TeamArchived))
	assert.Error(t, ValidateTeamTransition(types.TeamArchived, types.TeamActive))
}

func TestMemberTransitions(t *testing.T) {
	assert.NoError(t, ValidateMemberTransition(types.MemberActive, types.MemberRemoved))
	assert.NoError(t, ValidateMemberTransition(types.MemberActive, types.MemberInactive))
	assert.NoError(t, ValidateMemberTransition(types.MemberInactive, types.MemberActive))

	assert.Error(t, ValidateMemberTransition(types.MemberRemoved, types.MemberActive))
	assert.Error(t, ValidateMemberTransition(types.MemberInactive, types.MemberRemoved))
	assert.Error(t, ValidateMemberTransition(types.MemberActive, types.MemberActive))
}

func TestProjectTransitions(t *testing.T) {
	assert.NoError(t, ValidateProjectTransition(types.ProjectPlanned, types.ProjectActive))
	assert.NoError(t, ValidateProjectTransition(types.ProjectOnHold, types.ProjectActive))
	assert.NoError(t, ValidateProjectTransition(types.ProjectDeleted, types.ProjectPlanned))
	assert.NoError(t, ValidateProjectTransition(types.ProjectArchived, types.ProjectPlanned))
	assert.NoError(t, ValidateProjectTransition(types.ProjectCompleted, types.ProjectArchived))
	assert.NoError(t, ValidateProjectTransition(types.ProjectOnHold, types.ProjectArchived))
	for _, from := range []string{
		types.ProjectPlanned, types.ProjectActive, types.ProjectCompleted,
		types.ProjectOnHold, types.ProjectArchived,
	} {
		assert.NoError(t, ValidateProjectTransition(from, types.ProjectDeleted), "%s -> DELETED", from)
	}

	// Same-state is always refused, even where the target admits other sources.
	for _, status := range types.ValidProjectStatuses {
		assert.Error(t, ValidateProjectTransition(status, status), "%s -> %s", status, status)
	}

	// ON_HOLD is enterable only as an initial status.
	for _, from := range types.ValidProjectStatuses {
		assert.Error(t, ValidateProjectTransition(from, types.ProjectOnHold), "%s -> ON_HOLD", from)
	}

	assert.Error(t, ValidateProjectTransition(types.ProjectActive, "BOGUS"))
}

func TestProjectCompletedUnreachable(t *testing.T) {
	for _, from := range types.ValidProjectStatuses {
		err := ValidateProjectTransition(from, types.ProjectCompleted)
		assert.Error(t, err, "%s -> COMPLETED must be refused", from)
	}
}

func TestInitialProjectStatus(t *testing.T) {
	status, err := InitialProjectStatus("")
	require.NoError(t, err)
	assert.Equal(t, types.ProjectPlanned, status)

	for _, requested := range []string{types.ProjectPlanned, types.ProjectActive, types.ProjectOnHold} {
		status, err := InitialProjectStatus(requested)
		require.NoError(t, err)
		assert.Equal(t, requested, status)
	}

	for _, requested := range []string{types.ProjectCompleted, types.ProjectArchived, types.ProjectDeleted, "BOGUS"} {
		_, err := InitialProjectStatus(requested)
		assert.Error(t, err, "initial status %s must be refused", requested)
		assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidProjectState))
	}
}

func TestTaskCompletionTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)

	stamped := TaskCompletionTimestamp(types.TaskDone, nil, now)
	require.NotNil(t, stamped)
	assert.Equal(t, now, *stamped)

	// A task already DONE keeps its original stamp.
	kept := TaskCompletionTimestamp(types.TaskDone, &earlier, now)
	require.NotNil(t, kept)
	assert.Equal(t, earlier, *kept)

	// Leaving DONE clears the stamp.
	assert.Nil(t, TaskCompletionTimestamp(types.TaskInProgress, &earlier, now))
	assert.Nil(t, TaskCompletionTimestamp(types.TaskToDo, nil, now))
}

func TestValidateContentDelete(t *testing.T) {
	assert.NoError(t, ValidateContentDelete(types.ContentActive))

	err := ValidateContentDelete(types.ContentDeleted)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAlreadyDeleted))
}

func TestValidateProjectDates(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	assert.NoError(t, ValidateProjectDates(nil, nil, now))
	assert.NoError(t, ValidateProjectDates(&today, &tomorrow, now))
	// Same-day start is fine; the rule is day-granular.
	assert.NoError(t, ValidateProjectDates(&today, nil, now))

	assert.Error(t, ValidateProjectDates(&yesterday, nil, now))
	assert.Error(t, ValidateProjectDates(nil, &yesterday, now))

	err := ValidateProjectDates(&tomorrow, &today, now)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidDate))
}
