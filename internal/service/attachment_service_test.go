package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

func (f *fixture) upload(t *testing.T, actor *repository.User, taskID, name, content string) *repository.Attachment {
	t.Helper()
	attachment, err := f.services.Attachment.Upload(context.Background(), actor, taskID, UploadInput{
		FileName:    name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Reader:      strings.NewReader(content),
	})
	require.NoError(t, err)
	return attachment
}

func TestUploadAttachment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	attachment := f.upload(t, member, task.ID, "notes.txt", "hello world")
	assert.Equal(t, types.ContentActive, attachment.Status)
	assert.Equal(t, int64(len("hello world")), attachment.Size)
	assert.True(t, f.store.Has(attachment.ObjectKey))

	// Empty files are refused.
	_, err := f.services.Attachment.Upload(ctx, member, task.ID, UploadInput{
		FileName: "empty.txt",
		Size:     0,
		Reader:   strings.NewReader(""),
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeInvalidInput))

	stranger := f.register(t, "stranger@example.com", "Stranger")
	_, err = f.services.Attachment.Upload(ctx, stranger, task.ID, UploadInput{
		FileName: "sneaky.txt",
		Size:     5,
		Reader:   strings.NewReader("nope!"),
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}

func TestDownloadAttachment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)
	attachment := f.upload(t, owner, task.ID, "spec.txt", "the contents")

	got, reader, err := f.services.Attachment.Download(ctx, member, attachment.ID)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "spec.txt", got.FileName)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "the contents", string(data))

	stranger := f.register(t, "stranger@example.com", "Stranger")
	_, _, err = f.services.Attachment.Download(ctx, stranger, attachment.ID)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}

func TestDeleteAttachmentKeepsObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)
	attachment := f.upload(t, member, task.ID, "old.txt", "stale")

	// A plain member who is not the author cannot delete; the owner can.
	other := f.register(t, "other@example.com", "Other")
	_, err := f.services.Team.AddMember(ctx, owner, team.ID, other.ID, types.MemberRoleMember)
	require.NoError(t, err)
	err = f.services.Attachment.Delete(ctx, other, attachment.ID)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))

	require.NoError(t, f.services.Attachment.Delete(ctx, owner, attachment.ID))

	// Soft delete: the row is gone from reads but the object is retained.
	_, _, err = f.services.Attachment.Download(ctx, member, attachment.ID)
	assert.True(t, apperrors.HasTextCode(err, "ATTACHMENT_NOT_FOUND"))
	assert.True(t, f.store.Has(attachment.ObjectKey))

	err = f.services.Attachment.Delete(ctx, owner, attachment.ID)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAlreadyDeleted))

	attachments, err := f.services.Attachment.List(ctx, member, task.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestUploadToDeletedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _, team := f.team(t)
	project := f.project(t, owner, team.ID)
	task := f.task(t, owner, project.ID)

	require.NoError(t, f.services.Task.Delete(ctx, owner, task.ID))

	_, err := f.services.Attachment.Upload(ctx, owner, task.ID, UploadInput{
		FileName: "late.txt",
		Size:     4,
		Reader:   strings.NewReader("late"),
	})
	assert.True(t, apperrors.HasTextCode(err, "TASK_NOT_FOUND"))
}
