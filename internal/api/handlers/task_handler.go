package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

type assignTaskRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ProjectID   string     `json:"projectId"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toTaskResponse(t *repository.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
	}
}

func (h *Handlers) CreateTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	task, err := h.services.Task.Create(c.Request.Context(), actor, c.Param("id"), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *Handlers) GetTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	task, err := h.services.Task.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handlers) ListTasks(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	filters := &repository.TaskFilters{
		Status:   c.QueryArray("status"),
		Priority: c.QueryArray("priority"),
		Search:   c.Query("search"),
	}
	if assignee := c.Query("assignedTo"); assignee != "" {
		filters.AssignedTo = &assignee
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	tasks, err := h.services.Task.ListByProject(c.Request.Context(), actor, c.Param("id"), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) ListMyTasks(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	tasks, err := h.services.Task.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	task, err := h.services.Task.Update(c.Request.Context(), actor, c.Param("id"), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handlers) UpdateTaskStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	task, err := h.services.Task.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handlers) AssignTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req assignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	task, err := h.services.Task.Assign(c.Request.Context(), actor, c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handlers) UnassignTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	task, err := h.services.Task.Unassign(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *Handlers) DeleteTask(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Task.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
