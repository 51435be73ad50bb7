package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)

	// Any team member may create tasks.
	task, err := f.services.Task.Create(ctx, member, project.ID, CreateTaskInput{Title: "Ship it"})
	require.NoError(t, err)
	assert.Equal(t, types.TaskToDo, task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)
	assert.Nil(t, task.AssignedTo)
	assert.Nil(t, task.CompletedAt)

	stranger := f.register(t, "stranger@example.com", "Stranger")
	_, err = f.services.Task.Create(ctx, stranger, project.ID, CreateTaskInput{Title: "Nope"})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}

func TestCreateTaskDuplicateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	f.task(t, owner, project.ID)

	_, err := f.services.Task.Create(ctx, owner, project.ID, CreateTaskInput{Title: "write DOCS"})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeDuplicateResource))
}

func TestCreateTaskAssigneeMustBeActiveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)
	stranger := f.register(t, "stranger@example.com", "Stranger")

	_, err := f.services.Task.Create(ctx, owner, project.ID, CreateTaskInput{
		Title:      "Orphan",
		AssignedTo: &stranger.ID,
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidInput))

	// Removed members no longer qualify either.
	require.NoError(t, f.services.Team.RemoveMember(ctx, owner, team.ID, member.ID))
	_, err = f.services.Task.Create(ctx, owner, project.ID, CreateTaskInput{
		Title:      "Orphan",
		AssignedTo: &member.ID,
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidInput))
}

func TestTaskCompletionStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	done, err := f.services.Task.UpdateStatus(ctx, owner, task.ID, types.TaskDone)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, f.now, *done.CompletedAt)

	// Moving back out of DONE clears the stamp.
	reopened, err := f.services.Task.UpdateStatus(ctx, owner, task.ID, types.TaskInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
}

func TestTaskStatusMovesFreely(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	// No transition table: TO_DO -> DONE directly is fine.
	_, err := f.services.Task.UpdateStatus(ctx, owner, task.ID, types.TaskDone)
	require.NoError(t, err)
	_, err = f.services.Task.UpdateStatus(ctx, owner, task.ID, types.TaskToDo)
	require.NoError(t, err)

	_, err = f.services.Task.UpdateStatus(ctx, owner, task.ID, "BOGUS")
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidInput))
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	assigned, err := f.services.Task.Assign(ctx, owner, task.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, member.ID, *assigned.AssignedTo)

	mine, err := f.services.Task.ListMine(ctx, member)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	unassigned, err := f.services.Task.Unassign(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Nil(t, unassigned.AssignedTo)

	mine, err = f.services.Task.ListMine(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestUpdateTaskFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	title := "Write better docs"
	priority := types.PriorityHigh
	updated, err := f.services.Task.Update(ctx, owner, task.ID, UpdateTaskInput{
		Title:    &title,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "Write better docs", updated.Title)
	assert.Equal(t, types.PriorityHigh, updated.Priority)

	bad := "EXTREME"
	_, err = f.services.Task.Update(ctx, owner, task.ID, UpdateTaskInput{Priority: &bad})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidInput))
}

func TestDeleteTaskTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	require.NoError(t, f.services.Task.Delete(ctx, owner, task.ID))

	err := f.services.Task.Delete(ctx, owner, task.ID)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAlreadyDeleted))

	// Field updates and status changes are refused on a deleted task too.
	title := "Necromancy"
	_, err = f.services.Task.Update(ctx, owner, task.ID, UpdateTaskInput{Title: &title})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAlreadyDeleted))
	_, err = f.services.Task.UpdateStatus(ctx, owner, task.ID, types.TaskDone)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAlreadyDeleted))
}

func TestListTasksWithFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)

	_, err := f.services.Task.Create(ctx, owner, project.ID, CreateTaskInput{
		Title:      "Fix login",
		Priority:   types.PriorityHigh,
		AssignedTo: &member.ID,
	})
	require.NoError(t, err)
	_, err = f.services.Task.Create(ctx, owner, project.ID, CreateTaskInput{
		Title:    "Polish docs",
		Priority: types.PriorityLow,
	})
	require.NoError(t, err)

	byPriority, err := f.services.Task.ListByProject(ctx, member, project.ID, &repository.TaskFilters{
		Priority: []string{types.PriorityHigh},
	})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, "Fix login", byPriority[0].Title)

	bySearch, err := f.services.Task.ListByProject(ctx, member, project.ID, &repository.TaskFilters{
		Search: "docs",
	})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Polish docs", bySearch[0].Title)

	byAssignee, err := f.services.Task.ListByProject(ctx, member, project.ID, &repository.TaskFilters{
		AssignedTo: &member.ID,
	})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, "Fix login", byAssignee[0].Title)
}
