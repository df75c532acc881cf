package services

import (
	"context"
	"testing"

	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/config"
	"librahub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(f *lifecycleFixture) *AuthService {
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	return NewAuthService(
		repositories.NewUserRepository(f.db),
		repositories.NewRefreshTokenRepository(f.db),
		cfg,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newAuthService(f)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "newreader",
		FullName: "Độc giả mới",
		Email:    "newreader@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "newreader", resp.User.Username)
	assert.Equal(t, string(domain.RoleUser), resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "newreader", claims.Username)

	login, err := svc.Login(ctx, &LoginInput{Username: "newreader", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginInput{Username: "newreader", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newAuthService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Username: "taken",
		FullName: "A",
		Email:    "taken@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterInput{
		Username: "taken",
		FullName: "B",
		Email:    "fresh@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, &RegisterInput{
		Username: "fresh",
		FullName: "B",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, &RegisterInput{
		Username: "fresh",
		FullName: "B",
		Email:    "fresh@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newAuthService(f)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "rotator",
		FullName: "C",
		Email:    "rotator@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The old token was rotated out; replaying it must fail.
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new one still works.
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newAuthService(f)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "leaver",
		FullName: "D",
		Email:    "leaver@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLoginInactiveUser(t *testing.T) {
	f := setupLifecycleDB(t)
	svc := newAuthService(f)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{
		Username: "banned",
		FullName: "E",
		Email:    "banned@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Table("users").Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(ctx, &LoginInput{Username: "banned", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserInactive)
}
