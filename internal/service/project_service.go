package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/lifecycle"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type ProjectService struct {
	projects repository.ProjectRepository
	teams    repository.TeamRepository
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepository, teams repository.TeamRepository, logger *zap.SugaredLogger, now func() time.Time) *ProjectService {
	if now == nil {
		now = time.Now
	}
	return &ProjectService{projects: projects, teams: teams, logger: logger, now: now}
}

type CreateProjectInput struct {
	Name        string
	Description *string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create makes a project inside a team; team OWNER or system admin. Names are
// unique per team, case-insensitively.
func (s *ProjectService) Create(ctx context.Context, actor *repository.User, teamID string, input CreateProjectInput) (*repository.Project, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolveTeam(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateProject(a, membership) {
		return nil, apperrors.AccessDenied("only the team owner can create projects")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("project name must not be blank")
	}
	status, err := lifecycle.InitialProjectStatus(input.Status)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateProjectDates(input.StartDate, input.EndDate, s.now()); err != nil {
		return nil, err
	}

	existing, err := s.projects.FindByName(ctx, teamID, name)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up project name")
	}
	if existing != nil {
		return nil, apperrors.Duplicate("project", name)
	}

	project := &repository.Project{
		Name:        name,
		Description: input.Description,
		TeamID:      teamID,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	project.CreatedBy = actor.ID
	project.UpdatedBy = actor.ID
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, persistErr(err, "project", name)
	}

	s.logger.Infow("project created", "actorId", actor.ID, "projectId", project.ID, "teamId", teamID)
	return project, nil
}

// Get returns a project for any member of the owning team.
func (s *ProjectService) Get(ctx context.Context, actor *repository.User, projectID string) (*repository.Project, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	project, membership, err := s.resolveProject(ctx, a, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessProject(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	return project, nil
}

// ListByTeam returns the team's non-deleted projects for any team member.
func (s *ProjectService) ListByTeam(ctx context.Context, actor *repository.User, teamID string) ([]*repository.Project, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolveTeam(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessProject(a, membership) {
		return nil, apperrors.AccessDenied("not a member of this team")
	}
	projects, err := s.projects.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list projects")
	}
	return projects, nil
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Update changes project fields; team OWNER or system admin. Status changes
// go through UpdateStatus.
func (s *ProjectService) Update(ctx context.Context, actor *repository.User, projectID string, input UpdateProjectInput) (*repository.Project, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	project, membership, err := s.resolveProject(ctx, a, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutateProject(a, membership) {
		return nil, apperrors.AccessDenied("only the team owner can update projects")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("project name must not be blank")
		}
		if !strings.EqualFold(name, project.Name) {
			existing, err := s.projects.FindByName(ctx, project.TeamID, name)
			if err != nil {
				return nil, apperrors.Internal(err, "failed to look up project name")
			}
			if existing != nil {
				return nil, apperrors.Duplicate("project", name)
			}
			project.Name = name
		}
	}
	if input.Description != nil {
		project.Description = input.Description
	}

	start := project.StartDate
	end := project.EndDate
	if input.StartDate != nil {
		start = input.StartDate
	}
	if input.EndDate != nil {
		end = input.EndDate
	}
	if input.StartDate != nil || input.EndDate != nil {
		if err := lifecycle.ValidateProjectDates(input.StartDate, input.EndDate, s.now()); err != nil {
			return nil, err
		}
		if start != nil && end != nil && end.Before(*start) {
			return nil, apperrors.InvalidDate("end date must not precede start date")
		}
		project.StartDate = start
		project.EndDate = end
	}

	project.UpdatedBy = actor.ID
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, persistErr(err, "project", project.Name)
	}

	s.logger.Infow("project updated", "actorId", actor.ID, "projectId", project.ID)
	return project, nil
}

// UpdateStatus drives the project lifecycle. Restore, activation and
// archival are system-admin targets; soft delete is open to the team OWNER.
func (s *ProjectService) UpdateStatus(ctx context.Context, actor *repository.User, projectID, status string) (*repository.Project, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	project, membership, err := s.resolveProject(ctx, a, projectID)
	if err != nil {
		return nil, err
	}

	switch status {
	case types.ProjectDeleted:
		if !authz.CanMutateProject(a, membership) {
			return nil, apperrors.AccessDenied("only the team owner can delete projects")
		}
	default:
		if !authz.CanAdministerProjectStatus(a) {
			return nil, apperrors.AccessDenied("project status changes require the admin role")
		}
	}

	if err := lifecycle.ValidateProjectTransition(project.Status, status); err != nil {
		return nil, err
	}

	if err := s.projects.UpdateStatus(ctx, projectID, status, actor.ID); err != nil {
		return nil, apperrors.Internal(err, "failed to update project status")
	}
	project.Status = status
	project.UpdatedBy = actor.ID

	s.logger.Infow("project status updated", "actorId", actor.ID, "projectId", project.ID, "status", status)
	return project, nil
}

// Delete soft-deletes the project; team OWNER or system admin.
func (s *ProjectService) Delete(ctx context.Context, actor *repository.User, projectID string) error {
	_, err := s.UpdateStatus(ctx, actor, projectID, types.ProjectDeleted)
	return err
}

func (s *ProjectService) resolveTeam(ctx context.Context, a authz.Actor, teamID string) (*repository.Team, *authz.Membership, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up team")
	}
	if team == nil || (!types.TeamNotDeleted(team.Status) && !a.IsAdmin()) {
		return nil, nil, apperrors.NotFound("team")
	}
	member, err := s.teams.FindMember(ctx, teamID, a.ID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up membership")
	}
	return team, membershipOf(member), nil
}

func (s *ProjectService) resolveProject(ctx context.Context, a authz.Actor, projectID string) (*repository.Project, *authz.Membership, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up project")
	}
	if project == nil || (!types.ProjectNotDeleted(project.Status) && !a.IsAdmin()) {
		return nil, nil, apperrors.NotFound("project")
	}
	_, membership, err := s.resolveTeam(ctx, a, project.TeamID)
	if err != nil {
		return nil, nil, err
	}
	return project, membership, nil
}
