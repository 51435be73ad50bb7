package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/blob"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type fixture struct {
	services *Services
	repos    *repository.Repositories
	store    *blob.MemoryStore
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := repository.NewRepositories()
	store := blob.NewMemoryStore()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	f := &fixture{repos: repos, store: store, now: now}
	f.services = NewServices(ServiceDeps{
		Repos:             repos,
		Blob:              store,
		JWTSecret:         "test-secret",
		JWTExpiryMinutes:  15,
		RefreshExpiryDays: 7,
		Now:               func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) register(t *testing.T, email, name string) *repository.User {
	t.Helper()
	result, err := f.services.Auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "hunter2hunter2",
		FullName: name,
	})
	require.NoError(t, err)
	return result.User
}

func (f *fixture) registerAdmin(t *testing.T, email, name string) *repository.User {
	t.Helper()
	user := f.register(t, email, name)
	user.Role = types.RoleAdmin
	require.NoError(t, f.repos.UserRepo.Update(context.Background(), user))
	return user
}

// teamFixture seeds an owner, a plain member and a team containing both.
func (f *fixture) team(t *testing.T) (owner, member *repository.User, team *repository.Team) {
	t.Helper()
	ctx := context.Background()
	owner = f.register(t, "owner@example.com", "Team Owner")
	member = f.register(t, "member@example.com", "Team Member")

	team, err := f.services.Team.Create(ctx, owner, "Core Team")
	require.NoError(t, err)
	_, err = f.services.Team.AddMember(ctx, owner, team.ID, member.ID, types.MemberRoleMember)
	require.NoError(t, err)
	return owner, member, team
}

func (f *fixture) project(t *testing.T, owner *repository.User, teamID string) *repository.Project {
	t.Helper()
	project, err := f.services.Project.Create(context.Background(), owner, teamID, CreateProjectInput{
		Name: "Launch",
	})
	require.NoError(t, err)
	return project
}

func (f *fixture) task(t *testing.T, actor *repository.User, projectID string) *repository.Task {
	t.Helper()
	task, err := f.services.Task.Create(context.Background(), actor, projectID, CreateTaskInput{
		Title: "Write docs",
	})
	require.NoError(t, err)
	return task
}
