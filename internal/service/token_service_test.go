package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice@example.com", "Alice")

	token, err := f.services.Token.IssueAccessToken(user)
	require.NoError(t, err)

	email, err := f.services.Token.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestAccessTokenExpires(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice@example.com", "Alice")

	token, err := f.services.Token.IssueAccessToken(user)
	require.NoError(t, err)

	f.advance(16 * time.Minute)

	_, err = f.services.Token.ParseAccessToken(token)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenExpired))
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Token.ParseAccessToken("not-a-jwt")
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenInvalid))
}

func TestParseAccessTokenRejectsWrongKey(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice@example.com", "Alice")

	other := NewTokenService(f.repos.UserRepo, "different-secret", 15, 7, func() time.Time { return f.now })
	token, err := other.IssueAccessToken(user)
	require.NoError(t, err)

	_, err = f.services.Token.ParseAccessToken(token)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenInvalid))
}

func TestRefreshTokenLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Alice")

	rt, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rt.Token)
	assert.False(t, rt.Revoked)
	assert.Equal(t, f.now.Add(7*24*time.Hour), rt.ExpiresAt)

	require.NoError(t, f.services.Token.VerifyExpiration(ctx, rt))
}

func TestVerifyExpirationDeletesExpiredRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Alice")

	rt, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	f.advance(8 * 24 * time.Hour)

	err = f.services.Token.VerifyExpiration(ctx, rt)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenExpired))

	// The row is gone, not just flagged.
	stored, err := f.repos.UserRepo.FindRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRotateRevokesOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Alice")

	rt, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	rotated, err := f.services.Token.Rotate(ctx, rt)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Token, rotated.Token)

	old, err := f.repos.UserRepo.FindRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.True(t, old.Revoked)

	err = f.services.Token.VerifyExpiration(ctx, old)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenRevoked))
}

func TestRevokeByStringIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Alice")

	rt, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	revoked, err := f.services.Token.RevokeByString(ctx, rt.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = f.services.Token.RevokeByString(ctx, rt.Token)
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = f.services.Token.RevokeByString(ctx, "unknown-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenSweeps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com", "Alice")

	expired, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	revoked, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	live, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.services.Token.RevokeByString(ctx, revoked.Token)
	require.NoError(t, err)

	// Only the first token is past expiry after the jump.
	f.advance(8 * 24 * time.Hour)
	liveReplacement, err := f.services.Token.CreateRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	deleted, err := f.services.Token.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted) // expired, revoked and live all aged out

	deletedRevoked, err := f.services.Token.DeleteRevokedTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, deletedRevoked)

	stored, err := f.repos.UserRepo.FindRefreshToken(ctx, liveReplacement.Token)
	require.NoError(t, err)
	assert.NotNil(t, stored)

	for _, tok := range []string{expired.Token, revoked.Token, live.Token} {
		stored, err := f.repos.UserRepo.FindRefreshToken(ctx, tok)
		require.NoError(t, err)
		assert.Nil(t, stored)
	}
}
