package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/blob"
	"github.com/omarhammouda0/task-management-system/internal/repository"
)

// ServiceDeps carries everything the service layer needs. Now is injectable
// so tests can pin the clock.
type ServiceDeps struct {
	Repos             *repository.Repositories
	Blob              blob.Store
	Logger            *zap.SugaredLogger
	JWTSecret         string
	JWTExpiryMinutes  int
	RefreshExpiryDays int
	Now               func() time.Time
}

type Services struct {
	Token      *TokenService
	Auth       *AuthService
	User       *UserService
	Team       *TeamService
	Project    *ProjectService
	Task       *TaskService
	Comment    *CommentService
	Attachment *AttachmentService
}

func NewServices(deps ServiceDeps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}

	token := NewTokenService(
		deps.Repos.UserRepo,
		deps.JWTSecret,
		deps.JWTExpiryMinutes,
		deps.RefreshExpiryDays,
		deps.Now,
	)

	return &Services{
		Token:      token,
		Auth:       NewAuthService(deps.Repos.UserRepo, token, deps.Logger),
		User:       NewUserService(deps.Repos.UserRepo, deps.Logger),
		Team:       NewTeamService(deps.Repos.TeamRepo, deps.Repos.UserRepo, deps.Logger),
		Project:    NewProjectService(deps.Repos.ProjectRepo, deps.Repos.TeamRepo, deps.Logger, deps.Now),
		Task:       NewTaskService(deps.Repos.TaskRepo, deps.Repos.ProjectRepo, deps.Repos.TeamRepo, deps.Logger, deps.Now),
		Comment:    NewCommentService(deps.Repos.CommentRepo, deps.Repos.TaskRepo, deps.Repos.ProjectRepo, deps.Repos.TeamRepo, deps.Logger),
		Attachment: NewAttachmentService(deps.Repos.AttachmentRepo, deps.Repos.TaskRepo, deps.Repos.ProjectRepo, deps.Repos.TeamRepo, deps.Blob, deps.Logger),
	}
}

// actorOf projects the persisted user onto the authorization engine's view.
func actorOf(u *repository.User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role, Status: u.Status}
}

// membershipOf projects a member row; a nil row stays nil.
func membershipOf(m *repository.TeamMember) *authz.Membership {
	if m == nil {
		return nil
	}
	return &authz.Membership{TeamID: m.TeamID, UserID: m.UserID, Role: m.Role, Status: m.Status}
}

// persistErr maps a repository write failure: unique-constraint races become
// typed duplicates, anything else is wrapped internal.
func persistErr(err error, resource, detail string) error {
	if repository.IsDuplicate(err) {
		return apperrors.Duplicate(resource, detail)
	}
	return apperrors.Internal(err, "failed to persist "+resource)
}
