package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/auth"
)

func newAuthService(t *testing.T) (*AuthService, *mockUserRepo, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-please-rotate")
	require.NoError(t, err)
	users := newMockUserRepo()
	return NewAuthService(users, tokens, testLogger()), users, tokens
}

func TestLogin_CreatesUserOnFirstSeen(t *testing.T) {
	svc, users, tokens := newAuthService(t)

	user, token, err := svc.Login(context.Background(), "Ada.Lovelace@Example.COM")
	require.NoError(t, err)

	assert.Equal(t, "ada.lovelace@example.com", user.Email, "email is normalized")
	assert.Equal(t, "ada.lovelace", user.Name, "name defaults to the local part")
	assert.Len(t, users.users, 1)

	userID, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogin_ReturningUserIsNotDuplicated(t *testing.T) {
	svc, users, _ := newAuthService(t)

	first, _, err := svc.Login(context.Background(), "dev@example.com")
	require.NoError(t, err)

	second, _, err := svc.Login(context.Background(), "  DEV@example.com ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, users.users, 1)
}

func TestLogin_RejectsBadEmails(t *testing.T) {
	svc, users, _ := newAuthService(t)

	for _, email := range []string{"", "   ", "no-at-sign", "@example.com", "local@"} {
		_, _, err := svc.Login(context.Background(), email)
		assert.ErrorIs(t, err, apperror.ErrValidation, "email %q", email)
	}
	assert.Empty(t, users.users)
}

func TestMe(t *testing.T) {
	svc, _, _ := newAuthService(t)

	user, _, err := svc.Login(context.Background(), "me@example.com")
	require.NoError(t, err)

	got, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
