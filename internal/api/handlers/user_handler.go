package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarhammouda0/task-management-system/internal/service"
)

type updateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type emailVerifiedRequest struct {
	Verified bool `json:"verified"`
}

func (h *Handlers) CurrentUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(actor))
}

func (h *Handlers) GetUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	user, err := h.services.User.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handlers) ListUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	users, err := h.services.User.List(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	user, err := h.services.User.UpdateProfile(c.Request.Context(), actor, c.Param("id"), service.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handlers) UpdateUserRole(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	user, err := h.services.User.UpdateRole(c.Request.Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	user, err := h.services.User.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handlers) SetEmailVerified(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req emailVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}
	user, err := h.services.User.SetEmailVerified(c.Request.Context(), actor, c.Param("id"), req.Verified)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
