package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
)

type attachmentResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	AuthorID    string    `json:"authorId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAttachmentResponse(a *repository.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          a.ID,
		TaskID:      a.TaskID,
		AuthorID:    a.AuthorID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
}

func (h *Handlers) UploadAttachment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.bindingError(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.bindingError(c, err)
		return
	}
	defer file.Close()

	attachment, err := h.services.Attachment.Upload(c.Request.Context(), actor, c.Param("id"), service.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAttachmentResponse(attachment))
}

func (h *Handlers) ListAttachments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	attachments, err := h.services.Attachment.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]attachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, toAttachmentResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) DownloadAttachment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	attachment, reader, err := h.services.Attachment.Download(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer reader.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", attachment.FileName),
	}
	c.DataFromReader(http.StatusOK, attachment.Size, attachment.ContentType, reader, extraHeaders)
}

func (h *Handlers) DeleteAttachment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Attachment.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attachment deleted"})
}
