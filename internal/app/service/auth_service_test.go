package service

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlacklist struct {
	revoked map[string]time.Duration
}

func (f *fakeBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.revoked[tokenID] = ttl
	return nil
}

func TestAuthService_Signup(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		input   SignupInput
		wantErr error
	}{
		{
			name:    "Valid signup",
			input:   SignupInput{Email: "Test@Example.com ", Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: nil,
		},
		{
			name:    "Duplicate email",
			input:   SignupInput{Email: "test@example.com", Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "Missing email",
			input:   SignupInput{Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: ErrEmailRequired,
		},
		{
			name:    "Malformed email",
			input:   SignupInput{Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Short password",
			input:   SignupInput{Email: "short@example.com", Password: "12345", ConfirmPassword: "12345"},
			wantErr: util.ErrPasswordTooShort,
		},
		{
			name:    "Mismatched confirmation",
			input:   SignupInput{Email: "mismatch@example.com", Password: "secret1", ConfirmPassword: "secret2"},
			wantErr: util.ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.auth.Signup(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "test@example.com", result.User.Email)
			assert.Equal(t, testDefaultAddress, result.User.Address)
			assert.NotEmpty(t, result.Tokens.AccessToken)

			claims, err := util.ValidateToken(result.Tokens.AccessToken, "test-jwt-secret")
			require.NoError(t, err)
			assert.Equal(t, result.SessionID, claims.SessionID)
			assert.Equal(t, []string{model.RoleUser}, claims.Roles)
		})
	}
}

func TestAuthService_SignupStartsEmptyCartSession(t *testing.T) {
	env := newTestEnv(t)

	_, sess := env.signup(t, "cart@example.com")

	assert.True(t, sess.Cart.IsEmpty())
	assert.Equal(t, 1, env.sessions.Len())
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "login@example.com")

	t.Run("Valid credentials open a new session", func(t *testing.T) {
		result, err := env.auth.Login("LOGIN@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "login@example.com", result.User.Email)
		assert.Equal(t, 2, env.sessions.Len())
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := env.auth.Login("login@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := env.auth.Login("nobody@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Missing password", func(t *testing.T) {
		_, err := env.auth.Login("login@example.com", "")
		assert.ErrorIs(t, err, util.ErrPasswordRequired)
	})

	t.Run("Invalid email format", func(t *testing.T) {
		_, err := env.auth.Login("login", "password123")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	result, sess := env.signup(t, "bye@example.com")
	sess.Cart.AddItem(cartProduct("1", "89.99"))

	claims, err := util.ValidateToken(result.Tokens.AccessToken, "test-jwt-secret")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(context.Background(), claims))

	_, err = env.sessions.Get(result.SessionID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Contains(t, env.blacklist.revoked, claims.ID)
	assert.Greater(t, env.blacklist.revoked[claims.ID], time.Duration(0))
}

func TestAuthService_Refresh(t *testing.T) {
	env := newTestEnv(t)
	result, _ := env.signup(t, "refresh@example.com")

	t.Run("Refresh picks up new roles", func(t *testing.T) {
		require.NoError(t, env.userRepo.AddRole(result.User.ID, model.RoleAdmin))

		tokens, err := env.auth.Refresh(result.Tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
		require.NoError(t, err)
		assert.True(t, claims.HasRole(model.RoleAdmin))
		assert.Equal(t, result.SessionID, claims.SessionID)
	})

	t.Run("Access token is not a refresh token", func(t *testing.T) {
		_, err := env.auth.Refresh(result.Tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("Ended session cannot refresh", func(t *testing.T) {
		env.sessions.End(result.SessionID)
		_, err := env.auth.Refresh(result.Tokens.RefreshToken)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestAuthService_CurrentUserAndAddress(t *testing.T) {
	env := newTestEnv(t)
	result, _ := env.signup(t, "addr@example.com")

	user, err := env.auth.CurrentUser(result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, testDefaultAddress, user.Address)

	updated, err := env.auth.UpdateAddress(result.User.ID, "  456 Oak Ave, Los Angeles, CA 90210 ")
	require.NoError(t, err)
	assert.Equal(t, "456 Oak Ave, Los Angeles, CA 90210", updated.Address)

	_, err = env.auth.UpdateAddress(result.User.ID, "   ")
	assert.ErrorIs(t, err, ErrAddressRequired)

	_, err = env.auth.CurrentUser(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
