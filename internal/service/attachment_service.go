package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/blob"
	"github.com/omarhammouda0/task-management-system/internal/lifecycle"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type AttachmentService struct {
	attachments repository.AttachmentRepository
	tasks       repository.TaskRepository
	projects    repository.ProjectRepository
	teams       repository.TeamRepository
	store       blob.Store
	logger      *zap.SugaredLogger
}

func NewAttachmentService(attachments repository.AttachmentRepository, tasks repository.TaskRepository, projects repository.ProjectRepository, teams repository.TeamRepository, store blob.Store, logger *zap.SugaredLogger) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		tasks:       tasks,
		projects:    projects,
		teams:       teams,
		store:       store,
		logger:      logger,
	}
}

type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Upload stores the file under a fresh object key, then records the metadata
// row; any member of the owning team. Empty files are refused.
func (s *AttachmentService) Upload(ctx context.Context, actor *repository.User, taskID string, input UploadInput) (*repository.Attachment, error) {
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
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.InvalidInput("file name must not be blank")
	}
	if input.Size <= 0 {
		return nil, apperrors.InvalidInput("file must not be empty")
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := uuid.NewString()
	if err := s.store.Put(ctx, objectKey, input.Reader, input.Size, contentType); err != nil {
		return nil, apperrors.Internal(err, "failed to store file")
	}

	attachment := &repository.Attachment{
		TaskID:      taskID,
		AuthorID:    actor.ID,
		FileName:    input.FileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        input.Size,
		Status:      types.ContentActive,
	}
	attachment.CreatedBy = actor.ID
	attachment.UpdatedBy = actor.ID
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.Internal(err, "failed to record attachment")
	}

	s.logger.Infow("attachment uploaded", "actorId", actor.ID, "attachmentId", attachment.ID, "taskId", taskID)
	return attachment, nil
}

// Download streams the stored file; any member of the owning team. Deleted
// attachments read as not found.
func (s *AttachmentService) Download(ctx context.Context, actor *repository.User, attachmentID string) (*repository.Attachment, io.ReadCloser, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, nil, err
	}
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up attachment")
	}
	if attachment == nil || !types.ContentNotDeleted(attachment.Status) {
		return nil, nil, apperrors.NotFound("attachment")
	}
	_, _, membership, err := s.resolveTask(ctx, a, attachment.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanAccessTask(a, membership) {
		return nil, nil, apperrors.AccessDenied("not a member of the owning team")
	}

	reader, err := s.store.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to fetch file")
	}
	return attachment, reader, nil
}

// List returns a task's non-deleted attachments for any member of the owning
// team.
func (s *AttachmentService) List(ctx context.Context, actor *repository.User, taskID string) ([]*repository.Attachment, error) {
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
	attachments, err := s.attachments.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list attachments")
	}
	return attachments, nil
}

// Delete soft-deletes an attachment under the same moderation rule as
// comments. The stored object is retained; the row is only status-flipped.
func (s *AttachmentService) Delete(ctx context.Context, actor *repository.User, attachmentID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	attachment, err := s.attachments.FindByID(ctx, attachmentID)
	if err != nil {
		return apperrors.Internal(err, "failed to look up attachment")
	}
	if attachment == nil {
		return apperrors.NotFound("attachment")
	}

	_, _, membership, err := s.resolveTask(ctx, a, attachment.TaskID)
	if err != nil {
		return err
	}
	if !authz.CanModerateContent(a, membership, attachment.AuthorID) {
		return apperrors.AccessDenied("only the author or a team moderator can delete an attachment")
	}
	if err := lifecycle.ValidateContentDelete(attachment.Status); err != nil {
		return err
	}

	if err := s.attachments.UpdateStatus(ctx, attachmentID, types.ContentDeleted, actor.ID); err != nil {
		return apperrors.Internal(err, "failed to delete attachment")
	}

	s.logger.Infow("attachment deleted", "actorId", actor.ID, "attachmentId", attachmentID)
	return nil
}

func (s *AttachmentService) resolveTask(ctx context.Context, a authz.Actor, taskID string) (*repository.Task, *repository.Project, *authz.Membership, error) {
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
