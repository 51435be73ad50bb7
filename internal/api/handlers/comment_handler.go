package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/repository"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type commentResponse struct {
	ID        string        `json:"id"`
	TaskID    string        `json:"taskId"`
	AuthorID  string        `json:"authorId"`
	Content   string        `json:"content"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Author    *userResponse `json:"author,omitempty"`
}

func toCommentResponse(cm *repository.Comment) commentResponse {
	resp := commentResponse{
		ID:        cm.ID,
		TaskID:    cm.TaskID,
		AuthorID:  cm.AuthorID,
		Content:   cm.Content,
		Status:    cm.Status,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
	if cm.Author != nil {
		u := toUserResponse(cm.Author)
		resp.Author = &u
	}
	return resp
}

func (h *Handlers) AddComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	comment, err := h.services.Comment.Add(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

func (h *Handlers) ListComments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	comments, err := h.services.Comment.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	comment, err := h.services.Comment.Update(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommentResponse(comment))
}

func (h *Handlers) DeleteComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Comment.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
