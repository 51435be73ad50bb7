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

type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	teams    repository.TeamRepository
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, teams repository.TeamRepository, logger *zap.SugaredLogger, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, projects: projects, teams: teams, logger: logger, now: now}
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    string
	AssignedTo  *string
	DueDate     *time.Time
}

// Create adds a task to a project; any member of the owning team. Titles are
// unique per project, case-insensitively.
func (s *TaskService) Create(ctx context.Context, actor *repository.User, projectID string, input CreateTaskInput) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	project, membership, err := s.resolveProject(ctx, a, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.InvalidInput("task title must not be blank")
	}
	priority := input.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.IsValidPriority(priority) {
		return nil, apperrors.InvalidInput("unknown priority " + priority)
	}
	if input.AssignedTo != nil {
		if err := s.requireActiveMember(ctx, project.TeamID, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	existing, err := s.tasks.FindByTitle(ctx, projectID, title)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up task title")
	}
	if existing != nil {
		return nil, apperrors.Duplicate("task", title)
	}

	task := &repository.Task{
		Title:       title,
		Description: input.Description,
		ProjectID:   projectID,
		Status:      types.TaskToDo,
		Priority:    priority,
		AssignedTo:  input.AssignedTo,
		DueDate:     input.DueDate,
	}
	task.CreatedBy = actor.ID
	task.UpdatedBy = actor.ID
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, persistErr(err, "task", title)
	}

	s.logger.Infow("task created", "actorId", actor.ID, "taskId", task.ID, "projectId", projectID)
	return task, nil
}

// Get returns a task for any member of the owning team.
func (s *TaskService) Get(ctx context.Context, actor *repository.User, taskID string) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	task, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	return task, nil
}

// ListByProject returns the project's non-deleted tasks, filterable by
// status, priority, assignee and title search.
func (s *TaskService) ListByProject(ctx context.Context, actor *repository.User, projectID string, filters *repository.TaskFilters) ([]*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolveProject(ctx, a, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	tasks, err := s.tasks.FindByProjectID(ctx, projectID, filters)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list tasks")
	}
	return tasks, nil
}

// ListMine returns the actor's assigned, non-deleted tasks across projects.
func (s *TaskService) ListMine(ctx context.Context, actor *repository.User) ([]*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list tasks")
	}
	return tasks, nil
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *time.Time
}

// Update changes task fields; any member of the owning team.
func (s *TaskService) Update(ctx context.Context, actor *repository.User, taskID string, input UpdateTaskInput) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	task, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	if !types.TaskNotDeleted(task.Status) {
		return nil, apperrors.ErrAlreadyDeleted
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("task title must not be blank")
		}
		if !strings.EqualFold(title, task.Title) {
			existing, err := s.tasks.FindByTitle(ctx, task.ProjectID, title)
			if err != nil {
				return nil, apperrors.Internal(err, "failed to look up task title")
			}
			if existing != nil {
				return nil, apperrors.Duplicate("task", title)
			}
			task.Title = title
		}
	}
	if input.Description != nil {
		task.Description = input.Description
	}
	if input.Priority != nil {
		if !types.IsValidPriority(*input.Priority) {
			return nil, apperrors.InvalidInput("unknown priority " + *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	task.UpdatedBy = actor.ID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, persistErr(err, "task", task.Title)
	}

	s.logger.Infow("task updated", "actorId", actor.ID, "taskId", task.ID)
	return task, nil
}

// UpdateStatus moves a task freely between workflow statuses. Entering DONE
// stamps the completion time, leaving it clears the stamp.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *repository.User, taskID, status string) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	task, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	if !types.TaskNotDeleted(task.Status) {
		return nil, apperrors.ErrAlreadyDeleted
	}
	if err := lifecycle.ValidateTaskStatus(status); err != nil {
		return nil, err
	}

	completedAt := lifecycle.TaskCompletionTimestamp(status, task.CompletedAt, s.now())
	if err := s.tasks.UpdateStatus(ctx, taskID, status, completedAt, actor.ID); err != nil {
		return nil, apperrors.Internal(err, "failed to update task status")
	}
	task.Status = status
	task.CompletedAt = completedAt
	task.UpdatedBy = actor.ID

	s.logger.Infow("task status updated", "actorId", actor.ID, "taskId", task.ID, "status", status)
	return task, nil
}

// Assign sets the assignee, who must be an active member of the owning team.
func (s *TaskService) Assign(ctx context.Context, actor *repository.User, taskID, userID string) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	task, project, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	if !types.TaskNotDeleted(task.Status) {
		return nil, apperrors.ErrAlreadyDeleted
	}
	if err := s.requireActiveMember(ctx, project.TeamID, userID); err != nil {
		return nil, err
	}

	task.AssignedTo = &userID
	task.UpdatedBy = actor.ID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.Internal(err, "failed to assign task")
	}

	s.logger.Infow("task assigned", "actorId", actor.ID, "taskId", task.ID, "assigneeId", userID)
	return task, nil
}

// Unassign clears the assignee.
func (s *TaskService) Unassign(ctx context.Context, actor *repository.User, taskID string) (*repository.Task, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	task, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	if !types.TaskNotDeleted(task.Status) {
		return nil, apperrors.ErrAlreadyDeleted
	}

	task.AssignedTo = nil
	task.UpdatedBy = actor.ID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.Internal(err, "failed to unassign task")
	}

	s.logger.Infow("task unassigned", "actorId", actor.ID, "taskId", task.ID)
	return task, nil
}

// Delete soft-deletes the task; deleting twice fails.
func (s *TaskService) Delete(ctx context.Context, actor *repository.User, taskID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	task, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return err
	}
	if !authz.CanAccessTask(a, membership) {
		return apperrors.AccessDenied("not a member of the owning team")
	}
	if !types.TaskNotDeleted(task.Status) {
		return apperrors.ErrAlreadyDeleted
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, types.TaskDeleted, nil, actor.ID); err != nil {
		return apperrors.Internal(err, "failed to delete task")
	}

	s.logger.Infow("task deleted", "actorId", actor.ID, "taskId", taskID)
	return nil
}

func (s *TaskService) requireActiveMember(ctx context.Context, teamID, userID string) error {
	member, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		return apperrors.Internal(err, "failed to look up membership")
	}
	if member == nil || member.Status != types.MemberActive {
		return apperrors.InvalidInput("assignee must be an active member of the team")
	}
	return nil
}

func (s *TaskService) resolveProject(ctx context.Context, a authz.Actor, projectID string) (*repository.Project, *authz.Membership, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up project")
	}
	if project == nil || (!types.ProjectNotDeleted(project.Status) && !a.IsAdmin()) {
		return nil, nil, apperrors.NotFound("project")
	}
	team, err := s.teams.FindByID(ctx, project.TeamID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up team")
	}
	if team == nil || (!types.TeamNotDeleted(team.Status) && !a.IsAdmin()) {
		return nil, nil, apperrors.NotFound("team")
	}
	member, err := s.teams.FindMember(ctx, project.TeamID, a.ID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up membership")
	}
	return project, membershipOf(member), nil
}

func (s *TaskService) resolveTask(ctx context.Context, a authz.Actor, taskID string) (*repository.Task, *repository.Project, *authz.Membership, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, nil, apperrors.Internal(err, "failed to look up task")
	}
	if task == nil {
		return nil, nil, nil, apperrors.NotFound("task")
	}
	project, membership, err := s.resolveProject(ctx, a, task.ProjectID)
	if err != nil {
		return nil, nil, nil, err
	}
	return task, project, membership, nil
}
