package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/repository"
)

// TokenService mints short-lived HS256 access tokens and manages opaque
// rotating refresh tokens. Access tokens carry no session state; the live
// user lookup happens in the auth middleware on every request.
type TokenService struct {
	users      repository.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(users repository.UserRepository, secret string, expiryMinutes, refreshDays int, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	if expiryMinutes <= 0 {
		expiryMinutes = 15
	}
	if refreshDays <= 0 {
		refreshDays = 7
	}
	return &TokenService{
		users:      users,
		secret:     []byte(secret),
		accessTTL:  time.Duration(expiryMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
		now:        now,
	}
}

// IssueAccessToken mints a signed JWT with the user's email as subject and
// the system role as a claim.
func (s *TokenService) IssueAccessToken(user *repository.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Internal(err, "failed to sign access token")
	}
	return signed, nil
}

// ParseAccessToken verifies signature and expiry and returns the subject
// email. Identity liveness is the caller's concern.
func (s *TokenService) ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", apperrors.ErrTokenInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperrors.ErrTokenInvalid
	}
	return sub, nil
}

// CreateRefreshToken stores a fresh opaque token for the user.
func (s *TokenService) CreateRefreshToken(ctx context.Context, userID string) (*repository.RefreshToken, error) {
	rt := &repository.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.refreshTTL),
		Revoked:   false,
	}
	if err := s.users.SaveRefreshToken(ctx, rt); err != nil {
		return nil, apperrors.Internal(err, "failed to save refresh token")
	}
	return rt, nil
}

// VerifyExpiration enforces the stored token's lifecycle: expired rows are
// deleted on sight, revoked rows never validate again.
func (s *TokenService) VerifyExpiration(ctx context.Context, rt *repository.RefreshToken) error {
	if rt.ExpiresAt.Before(s.now()) {
		if err := s.users.DeleteRefreshToken(ctx, rt.Token); err != nil {
			return apperrors.Internal(err, "failed to delete expired refresh token")
		}
		return apperrors.ErrTokenExpired
	}
	if rt.Revoked {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// Rotate revokes the presented token and returns its replacement.
func (s *TokenService) Rotate(ctx context.Context, rt *repository.RefreshToken) (*repository.RefreshToken, error) {
	if _, err := s.users.RevokeRefreshToken(ctx, rt.Token); err != nil {
		return nil, apperrors.Internal(err, "failed to revoke refresh token")
	}
	return s.CreateRefreshToken(ctx, rt.UserID)
}

// RevokeByString marks a token revoked; unknown or already-revoked tokens are
// a no-op, so logout is idempotent.
func (s *TokenService) RevokeByString(ctx context.Context, token string) (bool, error) {
	revoked, err := s.users.RevokeRefreshToken(ctx, token)
	if err != nil {
		return false, apperrors.Internal(err, "failed to revoke refresh token")
	}
	return revoked, nil
}

// DeleteExpiredTokens sweeps rows past their expiry.
func (s *TokenService) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return s.users.DeleteExpiredRefreshTokens(ctx, s.now())
}

// DeleteRevokedTokens sweeps revoked rows.
func (s *TokenService) DeleteRevokedTokens(ctx context.Context) (int, error) {
	return s.users.DeleteRevokedRefreshTokens(ctx)
}
