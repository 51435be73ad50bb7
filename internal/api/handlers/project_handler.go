package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
)

type createProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

type projectResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	TeamID      string     `json:"teamId"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

func toProjectResponse(p *repository.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TeamID:      p.TeamID,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
}

func (h *Handlers) CreateProject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	project, err := h.services.Project.Create(c.Request.Context(), actor, c.Param("id"), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *Handlers) GetProject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	project, err := h.services.Project.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *Handlers) ListProjects(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	projects, err := h.services.Project.ListByTeam(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateProject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	project, err := h.services.Project.Update(c.Request.Context(), actor, c.Param("id"), service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *Handlers) UpdateProjectStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	project, err := h.services.Project.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *Handlers) DeleteProject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Project.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
