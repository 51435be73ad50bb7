package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/lifecycle"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type CommentService struct {
	comments repository.CommentRepository
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	teams    repository.TeamRepository
	logger   *zap.SugaredLogger
}

func NewCommentService(comments repository.CommentRepository, tasks repository.TaskRepository, projects repository.ProjectRepository, teams repository.TeamRepository, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{comments: comments, tasks: tasks, projects: projects, teams: teams, logger: logger}
}

// Add attaches a comment to a task; any member of the owning team.
func (s *CommentService) Add(ctx context.Context, actor *repository.User, taskID, content string) (*repository.Comment, error) {
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
		return nil, apperrors.NotFound("task")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidInput("comment content must not be blank")
	}

	comment := &repository.Comment{
		TaskID:   taskID,
		AuthorID: actor.ID,
		Content:  content,
		Status:   types.ContentActive,
	}
	comment.CreatedBy = actor.ID
	comment.UpdatedBy = actor.ID
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.Internal(err, "failed to create comment")
	}

	s.logger.Infow("comment added", "actorId", actor.ID, "commentId", comment.ID, "taskId", taskID)
	return comment, nil
}

// List returns a task's non-deleted comments for any member of the owning
// team.
func (s *CommentService) List(ctx context.Context, actor *repository.User, taskID string) ([]*repository.Comment, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, _, membership, err := s.resolveTask(ctx, a, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, apperrors.AccessDenied("not a member of the owning team")
	}
	comments, err := s.comments.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list comments")
	}
	return comments, nil
}

// Update edits a comment's content; the author or a system admin.
func (s *CommentService) Update(ctx context.Context, actor *repository.User, commentID, content string) (*repository.Comment, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up comment")
	}
	if comment == nil || !types.ContentNotDeleted(comment.Status) {
		return nil, apperrors.NotFound("comment")
	}
	if !authz.CanEditContent(a, comment.AuthorID) {
		return nil, apperrors.AccessDenied("only the author can edit a comment")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidInput("comment content must not be blank")
	}

	comment.Content = content
	comment.UpdatedBy = actor.ID
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.Internal(err, "failed to update comment")
	}

	s.logger.Infow("comment updated", "actorId", actor.ID, "commentId", comment.ID)
	return comment, nil
}

// Delete soft-deletes a comment; the author, a team member holding the OWNER
// or ADMIN member role, or a system admin. Deleting twice fails.
func (s *CommentService) Delete(ctx context.Context, actor *repository.User, commentID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return apperrors.Internal(err, "failed to look up comment")
	}
	if comment == nil {
		return apperrors.NotFound("comment")
	}

	_, _, membership, err := s.resolveTask(ctx, a, comment.TaskID)
	if err != nil {
		return err
	}
	if !authz.CanModerateContent(a, membership, comment.AuthorID) {
		return apperrors.AccessDenied("only the author or a team moderator can delete a comment")
	}
	if err := lifecycle.ValidateContentDelete(comment.Status); err != nil {
		return err
	}

	if err := s.comments.UpdateStatus(ctx, commentID, types.ContentDeleted, actor.ID); err != nil {
		return apperrors.Internal(err, "failed to delete comment")
	}

	s.logger.Infow("comment deleted", "actorId", actor.ID, "commentId", commentID)
	return nil
}

func (s *CommentService) resolveTask(ctx context.Context, a authz.Actor, taskID string) (*repository.Task, *repository.Project, *authz.Membership, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, nil, apperrors.Internal(err, "failed to look up task")
	}
	if task == nil {
		return nil, nil, nil, apperrors.NotFound("task")
	}
	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, nil, apperrors.Internal(err, "failed to look up project")
	}
	if project == nil || (!types.ProjectNotDeleted(project.Status) && !a.IsAdmin()) {
		return nil, nil, nil, apperrors.NotFound("project")
	}
	member, err := s.teams.FindMember(ctx, project.TeamID, a.ID)
	if err != nil {
		return nil, nil, nil, apperrors.Internal(err, "failed to look up membership")
	}
	return task, project, membershipOf(member), nil
}
