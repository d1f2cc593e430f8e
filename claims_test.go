package dashboard_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	dashboard "github.com/goliatone/go-dashboard"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaimsAccessors(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(20 * time.Minute)

	claims := &dashboard.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "marianne",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UID:      "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		UserRole: "user",
	}

	assert.Equal(t, "marianne", claims.Subject())
	assert.Equal(t, "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7", claims.UserID())
	assert.Equal(t, "user", claims.Role())
	assert.Equal(t, now, claims.IssuedAt())
	assert.Equal(t, exp, claims.Expires())
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &dashboard.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "marianne",
		},
		UserRole: "user",
	}

	assert.Equal(t, "marianne", claims.UserID())
}

func TestJWTClaimsRoleChecks(t *testing.T) {
	claims := &dashboard.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "marianne"},
		UID:              "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		UserRole:         "user",
	}

	assert.True(t, claims.HasRole("user"))
	assert.False(t, claims.HasRole("admin"))

	assert.True(t, claims.IsAtLeast("guest"))
	assert.True(t, claims.IsAtLeast("user"))
	assert.False(t, claims.IsAtLeast("admin"))
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &dashboard.JWTClaims{}

	assert.True(t, claims.IssuedAt().IsZero())
	assert.True(t, claims.Expires().IsZero())
}
