package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwozniak/mealvault/internal/service"
	"github.com/mwozniak/mealvault/internal/testhelpers"
)

func setupAuthTest(t *testing.T) *service.AuthService {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	return service.NewAuthService(db, nil, "test-secret")
}

func TestRegisterAndValidate(t *testing.T) {
	auth := setupAuthTest(t)
	ctx := context.Background()

	token, err := auth.Register(ctx, "t@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := setupAuthTest(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "t@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "t@example.com", "different")
	assert.EqualError(t, err, "user already exists")
}

func TestLogin(t *testing.T) {
	auth := setupAuthTest(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "t@example.com", "password123")
	require.NoError(t, err)

	token, err := auth.Login(ctx, "t@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.Login(ctx, "t@example.com", "wrong-password")
	assert.EqualError(t, err, "invalid credentials")

	_, err = auth.Login(ctx, "nobody@example.com", "password123")
	assert.EqualError(t, err, "invalid credentials")
}

func TestValidateGarbageToken(t *testing.T) {
	auth := setupAuthTest(t)

	_, err := auth.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestTokensFromOtherSecretRejected(t *testing.T) {
	auth := setupAuthTest(t)
	other := service.NewAuthService(testhelpers.SetupTestDatabase(t), nil, "other-secret")
	ctx := context.Background()

	token, err := other.Register(ctx, "t@example.com", "password123")
	require.NoError(t, err)

	_, err = auth.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestLogoutWithoutRedis(t *testing.T) {
	auth := setupAuthTest(t)
	ctx := context.Background()

	token, err := auth.Register(ctx, "t@example.com", "password123")
	require.NoError(t, err)

	// Without redis there is no denylist; logout succeeds and the token
	// stays valid until expiry.
	require.NoError(t, auth.Logout(ctx, token))
	_, err = auth.ValidateToken(ctx, token)
	assert.NoError(t, err)
}
