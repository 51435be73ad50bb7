package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/lifecycle"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type UserService struct {
	users  repository.UserRepository
	logger *zap.SugaredLogger
}

func NewUserService(users repository.UserRepository, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Get returns a user's profile; self or system admin.
func (s *UserService) Get(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	if !authz.CanViewUser(a, userID) {
		return nil, apperrors.AccessDenied("cannot view other users")
	}
	return user, nil
}

// List returns all users; system admin only.
func (s *UserService) List(ctx context.Context, actor *repository.User) ([]*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	if !authz.CanAdministerUsers(a) {
		return nil, apperrors.AccessDenied("listing users requires the admin role")
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list users")
	}
	return users, nil
}

type UpdateProfileInput struct {
	FullName *string
	Email    *string
	Password *string
}

// UpdateProfile changes mutable profile fields; self or system admin. Role,
// status and email verification go through the admin operations below.
func (s *UserService) UpdateProfile(ctx context.Context, actor *repository.User, userID string, input UpdateProfileInput) (*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil || !types.UserNotDeleted(user.Status) {
		return nil, apperrors.NotFound("user")
	}
	if !authz.CanUpdateProfile(a, userID) {
		return nil, apperrors.AccessDenied("cannot update another user's profile")
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, apperrors.InvalidInput("email must not be blank")
		}
		if !strings.EqualFold(email, user.Email) {
			existing, err := s.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, apperrors.Internal(err, "failed to look up email")
			}
			if existing != nil {
				return nil, apperrors.ErrEmailRegistered
			}
			user.Email = email
		}
	}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.InvalidInput("full name must not be blank")
		}
		user.FullName = name
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.InvalidInput("password must not be blank")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to hash password")
		}
		user.Password = string(hash)
	}

	user.UpdatedBy = actor.ID
	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrEmailRegistered
		}
		return nil, apperrors.Internal(err, "failed to update user")
	}

	s.logger.Infow("user profile updated", "actorId", actor.ID, "userId", user.ID)
	return user, nil
}

// UpdateRole changes the system role; admin only. Demoting the last active
// admin is refused.
func (s *UserService) UpdateRole(ctx context.Context, actor *repository.User, userID, role string) (*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	if !authz.CanAdministerUsers(a) {
		return nil, apperrors.AccessDenied("changing roles requires the admin role")
	}
	if !types.IsValidUserRole(role) {
		return nil, apperrors.InvalidInput("unknown user role " + role)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil || !types.UserNotDeleted(user.Status) {
		return nil, apperrors.NotFound("user")
	}

	if user.Role == types.RoleAdmin && role != types.RoleAdmin && user.Status == types.UserActive {
		others, err := s.users.CountOtherActiveAdmins(ctx, user.ID)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to count admins")
		}
		if authz.IsLastAdmin(others) {
			return nil, apperrors.ErrLastAdminProtected
		}
	}

	user.Role = role
	user.UpdatedBy = actor.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err, "failed to update user")
	}

	s.logger.Infow("user role updated", "actorId", actor.ID, "userId", user.ID, "role", role)
	return user, nil
}

// UpdateStatus drives the user lifecycle; admin only. Admins cannot take
// their own account out of ACTIVE, and the last active admin is protected.
func (s *UserService) UpdateStatus(ctx context.Context, actor *repository.User, userID, status string) (*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	if !authz.CanAdministerUsers(a) {
		return nil, apperrors.AccessDenied("changing user status requires the admin role")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	if authz.IsSelf(a, userID) && status != types.UserActive {
		return nil, apperrors.ErrSelfOperation
	}
	if err := lifecycle.ValidateUserTransition(user.Status, status); err != nil {
		return nil, err
	}
	if user.Role == types.RoleAdmin && user.Status == types.UserActive && status != types.UserActive {
		others, err := s.users.CountOtherActiveAdmins(ctx, user.ID)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to count admins")
		}
		if authz.IsLastAdmin(others) {
			return nil, apperrors.ErrLastAdminProtected
		}
	}

	if err := s.users.UpdateStatus(ctx, userID, status, actor.ID); err != nil {
		return nil, apperrors.Internal(err, "failed to update user status")
	}
	user.Status = status
	user.UpdatedBy = actor.ID

	s.logger.Infow("user status updated", "actorId", actor.ID, "userId", user.ID, "status", status)
	return user, nil
}

// Named lifecycle operations over UpdateStatus.

func (s *UserService) Activate(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	return s.UpdateStatus(ctx, actor, userID, types.UserActive)
}

func (s *UserService) Deactivate(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	return s.UpdateStatus(ctx, actor, userID, types.UserInactive)
}

func (s *UserService) Suspend(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	return s.UpdateStatus(ctx, actor, userID, types.UserSuspended)
}

func (s *UserService) Delete(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	return s.UpdateStatus(ctx, actor, userID, types.UserDeleted)
}

// Restore brings a DELETED account back to ACTIVE; the transition table
// admits no other exit from DELETED.
func (s *UserService) Restore(ctx context.Context, actor *repository.User, userID string) (*repository.User, error) {
	return s.UpdateStatus(ctx, actor, userID, types.UserActive)
}

// SetEmailVerified flips the verification flag; admin only.
func (s *UserService) SetEmailVerified(ctx context.Context, actor *repository.User, userID string, verified bool) (*repository.User, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	if !authz.CanAdministerUsers(a) {
		return nil, apperrors.AccessDenied("changing email verification requires the admin role")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil || !types.UserNotDeleted(user.Status) {
		return nil, apperrors.NotFound("user")
	}

	user.EmailVerified = verified
	user.UpdatedBy = actor.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err, "failed to update user")
	}

	s.logger.Infow("user email verification updated", "actorId", actor.ID, "userId", user.ID, "verified", verified)
	return user, nil
}
