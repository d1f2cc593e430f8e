package dashboard_test

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangePasswordHandler(t *testing.T) {
	store := newMemoryUsers()
	user := seedUser(t, store, "marianne", "marianne@example.com", "oldPassword1", dashboard.RoleUser)

	handler := dashboard.NewChangePasswordHandler(mockRepoManager{users: store})

	err := handler.Execute(context.Background(), dashboard.ChangePasswordMessage{
		UserID:          user.ID.String(),
		CurrentPassword: "oldPassword1",
		NewPassword:     "newPassword1",
	})
	require.NoError(t, err)

	updated, err := store.GetByID(context.Background(), user.ID.String())
	require.NoError(t, err)

	assert.Error(t, dashboard.ComparePasswordAndHash("oldPassword1", updated.PasswordHash))
	assert.NoError(t, dashboard.ComparePasswordAndHash("newPassword1", updated.PasswordHash))
}

func TestChangePasswordHandlerWrongCurrentPassword(t *testing.T) {
	store := newMemoryUsers()
	user := seedUser(t, store, "marianne", "marianne@example.com", "oldPassword1", dashboard.RoleUser)

	handler := dashboard.NewChangePasswordHandler(mockRepoManager{users: store})

	err := handler.Execute(context.Background(), dashboard.ChangePasswordMessage{
		UserID:          user.ID.String(),
		CurrentPassword: "wrongPassword",
		NewPassword:     "newPassword1",
	})
	assert.Equal(t, dashboard.ErrMismatchedHashAndPassword, err)

	// hash untouched
	current, err := store.GetByID(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.NoError(t, dashboard.ComparePasswordAndHash("oldPassword1", current.PasswordHash))
}

func TestChangePasswordHandlerUnknownUser(t *testing.T) {
	store := newMemoryUsers()
	handler := dashboard.NewChangePasswordHandler(mockRepoManager{users: store})

	err := handler.Execute(context.Background(), dashboard.ChangePasswordMessage{
		UserID:          "8b31c2ea-41d7-4b93-9a30-31f14f4c2be7",
		CurrentPassword: "whatever",
		NewPassword:     "newPassword1",
	})
	assert.Equal(t, dashboard.ErrMismatchedHashAndPassword, err)
}

func TestChangePasswordHandlerBadUserID(t *testing.T) {
	store := newMemoryUsers()
	handler := dashboard.NewChangePasswordHandler(mockRepoManager{users: store})

	err := handler.Execute(context.Background(), dashboard.ChangePasswordMessage{
		UserID:          "not-a-uuid",
		CurrentPassword: "whatever",
		NewPassword:     "newPassword1",
	})
	assert.Error(t, err)
}
