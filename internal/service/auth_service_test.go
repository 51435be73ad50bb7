package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

func TestRegisterCreatesActiveMember(t *testing.T) {
	f := newFixture(t)

	result, err := f.services.Auth.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		FullName: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, types.RoleMember, result.User.Role)
	assert.Equal(t, types.UserActive, result.User.Status)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, "hunter2hunter2", result.User.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com", "Alice")

	_, err := f.services.Auth.Register(context.Background(), RegisterInput{
		Email:    "ALICE@example.com",
		Password: "hunter2hunter2",
		FullName: "Imposter",
	})
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeEmailRegistered))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com", "Alice")

	result, err := f.services.Auth.Login(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	// Wrong password and unknown email produce the same failure.
	_, badPass := f.services.Auth.Login(ctx, "alice@example.com", "wrong-password")
	_, badEmail := f.services.Auth.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.True(t, apperrors.HasTextCode(badPass, apperrors.TextCodeNotAuthenticated))
	assert.True(t, apperrors.HasTextCode(badEmail, apperrors.TextCodeNotAuthenticated))
}

func TestLoginRefusedForInactiveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerAdmin(t, "admin@example.com", "Admin")
	user := f.register(t, "alice@example.com", "Alice")

	_, err := f.services.User.Suspend(ctx, admin, user.ID)
	require.NoError(t, err)

	_, err = f.services.Auth.Login(ctx, "alice@example.com", "hunter2hunter2")
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeAccessDenied))
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.services.Auth.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		FullName: "Alice",
	})
	require.NoError(t, err)

	refreshed, err := f.services.Auth.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The consumed token is burned.
	_, err = f.services.Auth.Refresh(ctx, registered.RefreshToken)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenRevoked))

	// The replacement still works.
	_, err = f.services.Auth.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Auth.Refresh(context.Background(), "no-such-token")
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenInvalid))
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.services.Auth.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
		FullName: "Alice",
	})
	require.NoError(t, err)

	require.NoError(t, f.services.Auth.Logout(ctx, registered.RefreshToken))
	require.NoError(t, f.services.Auth.Logout(ctx, registered.RefreshToken))
	require.NoError(t, f.services.Auth.Logout(ctx, "never-existed"))

	// A logged-out token cannot refresh.
	_, err = f.services.Auth.Refresh(ctx, registered.RefreshToken)
	assert.True(t, apperrors.HasTextCode(err, apperrors.TextCodeTokenRevoked))
}
