package dashboard_test

import (
	"testing"

	dashboard "github.com/goliatone/go-dashboard"
	"github.com/stretchr/testify/assert"
)

func TestUserRoleIsValid(t *testing.T) {
	for _, role := range dashboard.GetAllRoles() {
		assert.True(t, role.IsValid(), "role %s should be valid", role)
	}

	assert.False(t, dashboard.UserRole("superuser").IsValid())
	assert.False(t, dashboard.UserRole("").IsValid())
}

func TestUserRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		name string
		role dashboard.UserRole
		min  dashboard.UserRole
		want bool
	}{
		{"admin meets admin", dashboard.RoleAdmin, dashboard.RoleAdmin, true},
		{"admin meets user", dashboard.RoleAdmin, dashboard.RoleUser, true},
		{"user meets guest", dashboard.RoleUser, dashboard.RoleGuest, true},
		{"user below admin", dashboard.RoleUser, dashboard.RoleAdmin, false},
		{"guest below user", dashboard.RoleGuest, dashboard.RoleUser, false},
		{"unknown role fails", dashboard.UserRole("nope"), dashboard.RoleGuest, false},
		{"unknown minimum fails", dashboard.RoleAdmin, dashboard.UserRole("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsAtLeast(tt.min))
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := dashboard.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, dashboard.RoleAdmin, role)

	_, ok = dashboard.ParseRole("root")
	assert.False(t, ok)
}
