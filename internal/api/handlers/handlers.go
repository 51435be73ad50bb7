package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/api/middleware"
	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
)

// Handlers binds HTTP requests to the service layer. All authorization lives
// below; handlers only shape requests and responses.
type Handlers struct {
	services *service.Services
	logger   *zap.SugaredLogger
}

func New(services *service.Services, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{services: services, logger: logger}
}

// Register wires every route onto the router. authMW must be the middleware
// that resolves the actor; rateMW guards the anonymous auth routes.
func (h *Handlers) Register(r *gin.Engine, authMW, rateMW gin.HandlerFunc) {
	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", rateMW, h.RegisterUser)
	auth.POST("/login", rateMW, h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	protected := api.Group("")
	protected.Use(authMW)

	protected.GET("/users", h.ListUsers)
	protected.GET("/users/me", h.CurrentUser)
	protected.GET("/users/:id", h.GetUser)
	protected.PATCH("/users/:id", h.UpdateProfile)
	protected.PATCH("/users/:id/role", h.UpdateUserRole)
	protected.PATCH("/users/:id/status", h.UpdateUserStatus)
	protected.PATCH("/users/:id/email-verified", h.SetEmailVerified)

	protected.POST("/teams", h.CreateTeam)
	protected.GET("/teams", h.ListMyTeams)
	protected.GET("/teams/:id", h.GetTeam)
	protected.PATCH("/teams/:id", h.UpdateTeam)
	protected.DELETE("/teams/:id", h.DeleteTeam)
	protected.POST("/teams/:id/restore", h.RestoreTeam)
	protected.POST("/teams/:id/members", h.AddTeamMember)
	protected.GET("/teams/:id/members", h.ListTeamMembers)
	protected.PATCH("/teams/:id/members/:userId", h.UpdateTeamMemberRole)
	protected.DELETE("/teams/:id/members/:userId", h.RemoveTeamMember)
	protected.POST("/teams/:id/leave", h.LeaveTeam)

	protected.POST("/teams/:id/projects", h.CreateProject)
	protected.GET("/teams/:id/projects", h.ListProjects)
	protected.GET("/projects/:id", h.GetProject)
	protected.PATCH("/projects/:id", h.UpdateProject)
	protected.PATCH("/projects/:id/status", h.UpdateProjectStatus)
	protected.DELETE("/projects/:id", h.DeleteProject)

	protected.POST("/projects/:id/tasks", h.CreateTask)
	protected.GET("/projects/:id/tasks", h.ListTasks)
	protected.GET("/tasks/mine", h.ListMyTasks)
	protected.GET("/tasks/:id", h.GetTask)
	protected.PATCH("/tasks/:id", h.UpdateTask)
	protected.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	protected.POST("/tasks/:id/assign", h.AssignTask)
	protected.POST("/tasks/:id/unassign", h.UnassignTask)
	protected.DELETE("/tasks/:id", h.DeleteTask)

	protected.POST("/tasks/:id/comments", h.AddComment)
	protected.GET("/tasks/:id/comments", h.ListComments)
	protected.PATCH("/comments/:id", h.UpdateComment)
	protected.DELETE("/comments/:id", h.DeleteComment)

	protected.POST("/tasks/:id/attachments", h.UploadAttachment)
	protected.GET("/tasks/:id/attachments", h.ListAttachments)
	protected.GET("/attachments/:id", h.DownloadAttachment)
	protected.DELETE("/attachments/:id", h.DeleteAttachment)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// actor pulls the resolved user or fails the request; routes behind the auth
// middleware always have one.
func (h *Handlers) actor(c *gin.Context) (*repository.User, bool) {
	user, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
			"code":  apperrors.TextCodeNotAuthenticated,
		})
		return nil, false
	}
	return user, true
}

// respondError maps the error taxonomy onto HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		h.logger.Errorw("unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": apperrors.TextCodeInternal})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case richErr.TextCode == apperrors.TextCodeAccessDenied:
		status = http.StatusForbidden
	case richErr.Category == goerrors.CategoryAuth:
		status = http.StatusUnauthorized
	case richErr.Category == goerrors.CategoryNotFound:
		status = http.StatusNotFound
	case richErr.Category == goerrors.CategoryConflict:
		status = http.StatusConflict
	case richErr.Category == goerrors.CategoryValidation,
		richErr.Category == goerrors.CategoryBadInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Errorw("internal error", "error", err)
		c.JSON(status, gin.H{"error": "internal error", "code": apperrors.TextCodeInternal})
		return
	}
	c.JSON(status, gin.H{"error": richErr.Message, "code": richErr.TextCode})
}

func (h *Handlers) bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.TextCodeInvalidInput})
}
