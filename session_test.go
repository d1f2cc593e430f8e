package dashboard_test

import (
	"testing"

	dashboard "github.com/goliatone/go-dashboard"
	"github.com/stretchr/testify/assert"
)

func TestSessionObjectRoleHelpers(t *testing.T) {
	session := &dashboard.SessionObject{
		UserID: "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		Data: map[string]any{
			"role":     "admin",
			"username": "marianne",
		},
	}

	assert.Equal(t, "admin", session.GetRole())
	assert.Equal(t, "marianne", session.GetUsername())
	assert.True(t, session.HasRole("admin"))
	assert.False(t, session.HasRole("user"))
	assert.True(t, session.IsAtLeast(dashboard.RoleUser))
}

func TestSessionObjectDefaultsToGuest(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil data", nil},
		{"missing role", map[string]any{"username": "marianne"}},
		{"invalid role", map[string]any{"role": "superuser"}},
		{"non-string role", map[string]any{"role": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &dashboard.SessionObject{Data: tt.data}
			assert.Equal(t, string(dashboard.RoleGuest), session.GetRole())
			assert.False(t, session.IsAtLeast(dashboard.RoleUser))
		})
	}
}

func TestSessionObjectGetUserUUID(t *testing.T) {
	session := &dashboard.SessionObject{UserID: "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7"}

	id, err := session.GetUserUUID()
	assert.NoError(t, err)
	assert.Equal(t, "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7", id.String())

	session.UserID = "not-a-uuid"
	_, err = session.GetUserUUID()
	assert.Error(t, err)
}
