package dashboard_test

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutherLogin(t *testing.T) {
	identity := testIdentity{
		id:       "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		username: "marianne",
		email:    "marianne@example.com",
		role:     "user",
	}

	t.Run("success returns signed token", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", mock.Anything, "marianne", "secretPassword1").
			Return(identity, nil)

		auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "login-secret"})

		token, err := auther.Login(context.Background(), "marianne", "secretPassword1")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "marianne", claims.Subject())
		assert.Equal(t, identity.id, claims.UserID())
		assert.Equal(t, "user", claims.Role())

		provider.AssertExpectations(t)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", mock.Anything, "marianne", "bad").
			Return(nil, dashboard.ErrMismatchedHashAndPassword)

		auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "login-secret"})

		_, err := auther.Login(context.Background(), "marianne", "bad")
		assert.Equal(t, dashboard.ErrMismatchedHashAndPassword, err)
	})

	t.Run("nil identity rejected", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", mock.Anything, "marianne", "secretPassword1").
			Return(nil, nil)

		auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "login-secret"})

		_, err := auther.Login(context.Background(), "marianne", "secretPassword1")
		assert.Equal(t, dashboard.ErrIdentityNotFound, err)
	})
}

func TestAutherSessionFromToken(t *testing.T) {
	identity := testIdentity{
		id:       "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		username: "marianne",
		role:     "admin",
	}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "marianne", "secretPassword1").
		Return(identity, nil)

	auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "session-secret"})

	token, err := auther.Login(context.Background(), "marianne", "secretPassword1")
	require.NoError(t, err)

	session, err := auther.SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, identity.id, session.GetUserID())
	assert.Equal(t, "marianne", session.GetUsername())
	assert.Equal(t, "admin", session.GetRole())
	assert.Equal(t, "go-dashboard-test", session.GetIssuer())
	assert.NotNil(t, session.GetIssuedAt())
}

func TestAutherSessionFromTokenRejectsGarbage(t *testing.T) {
	provider := new(MockIdentityProvider)
	auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "session-secret"})

	_, err := auther.SessionFromToken("not-a-token")
	assert.Error(t, err)
	assert.True(t, dashboard.IsMalformedError(err))
}

func TestAutherIdentityFromSession(t *testing.T) {
	identity := testIdentity{
		id:       "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		username: "marianne",
		role:     "user",
	}

	provider := new(MockIdentityProvider)
	provider.On("FindIdentityByIdentifier", mock.Anything, identity.id).
		Return(identity, nil)

	auther := dashboard.NewAuthenticator(provider, testConfig{signingKey: "session-secret"})

	session := &dashboard.SessionObject{UserID: identity.id}

	got, err := auther.IdentityFromSession(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, identity.username, got.Username())

	provider.AssertExpectations(t)
}
