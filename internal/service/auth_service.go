package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
	logger *zap.SugaredLogger
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult bundles the authenticated user with a fresh token pair.
type AuthResult struct {
	User         *repository.User
	AccessToken  string
	RefreshToken string
}

// Register creates an ACTIVE MEMBER account and signs it in. The email
// uniqueness check is advisory; the constraint decides races.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, apperrors.InvalidInput("email, password and full name are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up email")
	}
	if existing != nil {
		return nil, apperrors.ErrEmailRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to hash password")
	}

	user := &repository.User{
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(input.FullName),
		Role:     types.RoleMember,
		Status:   types.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.ErrEmailRegistered
		}
		return nil, apperrors.Internal(err, "failed to create user")
	}

	s.logger.Infow("user registered", "userId", user.ID)
	return s.issuePair(ctx, user)
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up email")
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != types.UserActive {
		return nil, apperrors.AccessDenied("account is not active")
	}

	s.logger.Infow("user logged in", "userId", user.ID)
	return s.issuePair(ctx, user)
}

// Refresh rotates the presented refresh token and returns a new pair. The old
// token never validates again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	rt, err := s.users.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up refresh token")
	}
	if rt == nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if err := s.tokens.VerifyExpiration(ctx, rt); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, rt.UserID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil || user.Status != types.UserActive {
		return nil, apperrors.AccessDenied("account is not active")
	}

	rotated, err := s.tokens.Rotate(ctx, rt)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("refresh token rotated", "userId", user.ID)
	return &AuthResult{User: user, AccessToken: access, RefreshToken: rotated.Token}, nil
}

// Logout revokes the refresh token; unknown tokens are a silent no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	revoked, err := s.tokens.RevokeByString(ctx, refreshToken)
	if err != nil {
		return err
	}
	if revoked {
		s.logger.Infow("refresh token revoked on logout")
	}
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, user *repository.User) (*AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh.Token}, nil
}
