package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/repository"
)

type teamRequest struct {
	Name string `json:"name" binding:"required"`
}

type addMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

type memberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type teamResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
	Status  string `json:"status"`
}

type memberResponse struct {
	ID       string        `json:"id"`
	TeamID   string        `json:"teamId"`
	UserID   string        `json:"userId"`
	Role     string        `json:"role"`
	Status   string        `json:"status"`
	JoinedAt time.Time     `json:"joinedAt"`
	User     *userResponse `json:"user,omitempty"`
}

func toTeamResponse(t *repository.Team) teamResponse {
	return teamResponse{ID: t.ID, Name: t.Name, OwnerID: t.OwnerID, Status: t.Status}
}

func toMemberResponse(m *repository.TeamMember) memberResponse {
	resp := memberResponse{
		ID:       m.ID,
		TeamID:   m.TeamID,
		UserID:   m.UserID,
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
	if m.User != nil {
		u := toUserResponse(m.User)
		resp.User = &u
	}
	return resp
}

func (h *Handlers) CreateTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	team, err := h.services.Team.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTeamResponse(team))
}

func (h *Handlers) GetTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	team, err := h.services.Team.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamResponse(team))
}

func (h *Handlers) ListMyTeams(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	teams, err := h.services.Team.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	team, err := h.services.Team.Update(c.Request.Context(), actor, c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeamResponse(team))
}

func (h *Handlers) DeleteTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Team.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "team deleted"})
}

func (h *Handlers) RestoreTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Team.Restore(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "team restored"})
}

func (h *Handlers) AddTeamMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	member, err := h.services.Team.AddMember(c.Request.Context(), actor, c.Param("id"), req.UserID, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMemberResponse(member))
}

func (h *Handlers) ListTeamMembers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	members, err := h.services.Team.ListMembers(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateTeamMemberRole(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req memberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	member, err := h.services.Team.UpdateMemberRole(c.Request.Context(), actor, c.Param("id"), c.Param("userId"), req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *Handlers) RemoveTeamMember(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Team.RemoveMember(c.Request.Context(), actor, c.Param("id"), c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *Handlers) LeaveTeam(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.services.Team.Leave(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left team"})
}
