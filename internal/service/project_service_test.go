package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

func TestCreateProjectIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)

	_, err := f.services.Project.Create(ctx, member, team.ID, CreateProjectInput{Name: "Launch"})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))

	project, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, types.ProjectPlanned, project.Status)
	assert.Equal(t, team.ID, project.TeamID)
}

func TestCreateProjectInitialStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)

	// PLANNED, ACTIVE and ON_HOLD are the only allowed starting points.
	for i, status := range []string{types.ProjectPlanned, types.ProjectActive, types.ProjectOnHold} {
		p, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
			Name:   "Project " + string(rune('A'+i)),
			Status: status,
		})
		require.NoError(t, err)
		assert.Equal(t, status, p.Status)
	}

	for _, status := range []string{types.ProjectCompleted, types.ProjectArchived, types.ProjectDeleted} {
		_, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
			Name:   "Bad " + status,
			Status: status,
		})
		assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidProjectState), status)
	}
}

func TestCreateProjectDuplicateNamePerTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	f.project(t, owner, team.ID)

	_, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{Name: "launch"})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeDuplicateResource))

	// The same name in a different team is fine.
	other, err := f.services.Team.Create(ctx, owner, "Second Team")
	require.NoError(t, err)
	_, err = f.services.Project.Create(ctx, owner, other.ID, CreateProjectInput{Name: "Launch"})
	assert.NoError(t, err)
}

func TestProjectDateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)

	yesterday := f.now.AddDate(0, 0, -1)
	_, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
		Name:      "Past Start",
		StartDate: &yesterday,
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidDate))

	// Same calendar day is allowed even if the clock time already passed.
	earlierToday := f.now.Add(-2 * time.Hour)
	nextWeek := f.now.AddDate(0, 0, 7)
	_, err = f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
		Name:      "Sprint",
		StartDate: &earlierToday,
		EndDate:   &nextWeek,
	})
	assert.NoError(t, err)

	tomorrow := f.now.AddDate(0, 0, 1)
	_, err = f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
		Name:      "Backwards",
		StartDate: &nextWeek,
		EndDate:   &tomorrow,
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidDate))
}

func TestUpdateProjectFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)

	name := "Relaunch"
	desc := "Second attempt"
	updated, err := f.services.Project.Update(ctx, owner, project.ID, UpdateProjectInput{
		Name:        &name,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Second attempt", *updated.Description)

	_, err = f.services.Project.Update(ctx, member, project.ID, UpdateProjectInput{Name: &name})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}

func TestProjectStatusAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	admin := f.registerAdmin(t, "admin@example.com", "Admin")
	project := f.project(t, owner, team.ID)

	// Activation is an admin target; the owner is refused.
	_, err := f.services.Project.UpdateStatus(ctx, owner, project.ID, types.ProjectActive)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))

	activated, err := f.services.Project.UpdateStatus(ctx, admin, project.ID, types.ProjectActive)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectActive, activated.Status)

	// Soft delete stays open to the owner.
	require.NoError(t, f.services.Project.Delete(ctx, owner, project.ID))

	stored, err := f.repos.ProjectRepo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectDeleted, stored.Status)
}

func TestProjectStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	admin := f.registerAdmin(t, "admin@example.com", "Admin")
	project := f.project(t, owner, team.ID)

	// ON_HOLD can only be an initial status, never a transition target.
	_, err := f.services.Project.UpdateStatus(ctx, admin, project.ID, types.ProjectOnHold)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidTransition))

	// COMPLETED is unreachable by transition.
	_, err = f.services.Project.UpdateStatus(ctx, admin, project.ID, types.ProjectCompleted)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidTransition))

	// Same-state changes are refused.
	_, err = f.services.Project.UpdateStatus(ctx, admin, project.ID, types.ProjectPlanned)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidTransition))

	// A project created ON_HOLD may be activated or archived.
	held, err := f.services.Project.Create(ctx, owner, team.ID, CreateProjectInput{
		Name:   "Paused",
		Status: types.ProjectOnHold,
	})
	require.NoError(t, err)
	_, err = f.services.Project.UpdateStatus(ctx, admin, held.ID, types.ProjectActive)
	assert.NoError(t, err)
}

func TestRestoreDeletedProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	admin := f.registerAdmin(t, "admin@example.com", "Admin")
	project := f.project(t, owner, team.ID)

	require.NoError(t, f.services.Project.Delete(ctx, owner, project.ID))

	// Deleted projects read as not found for non-admins, including the owner.
	_, err := f.services.Project.Get(ctx, owner, project.ID)
	assert.True(t, apperrors.HasTextCode(err, "PROJECT_NOT_FOUND"))

	restored, err := f.services.Project.UpdateStatus(ctx, admin, project.ID, types.ProjectPlanned)
	require.NoError(t, err)
	assert.Equal(t, types.ProjectPlanned, restored.Status)

	_, err = f.services.Project.Get(ctx, owner, project.ID)
	assert.NoError(t, err)
}

func TestListProjectsByTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	f.project(t, owner, team.ID)
	stranger := f.register(t, "stranger@example.com", "Stranger")

	projects, err := f.services.Project.ListByTeam(ctx, member, team.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	_, err = f.services.Project.ListByTeam(ctx, stranger, team.ID)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}
