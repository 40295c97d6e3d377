package services_test

import (
	"testing"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewUserService(config.AppConfig{})
	alice := createUser(t, db, "alice", models.RoleUser)

	got, err := svc.GetUser(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = svc.GetUser(db, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListUsers_AdminOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewUserService(config.AppConfig{})
	alice := createUser(t, db, "alice", models.RoleUser)
	admin := createUser(t, db, "root", models.RoleAdmin)

	_, err := svc.ListUsers(db, alice.AsCaller())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	users, err := svc.ListUsers(db, admin.AsCaller())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestChangeRole(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewUserService(config.AppConfig{})
	alice := createUser(t, db, "alice", models.RoleUser)
	admin := createUser(t, db, "root", models.RoleAdmin)

	_, err := svc.ChangeRole(db, alice.AsCaller(), alice.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.ChangeRole(db, admin.AsCaller(), alice.ID, models.Role("owner"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidField)

	_, err = svc.ChangeRole(db, admin.AsCaller(), 9999, models.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := svc.ChangeRole(db, admin.AsCaller(), alice.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	var reread models.User
	require.NoError(t, db.First(&reread, alice.ID).Error)
	assert.Equal(t, models.RoleAdmin, reread.Role)
}

func TestChangeRole_SelfAssignFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewUserService(config.AppConfig{AllowRoleSelfAssign: true})
	alice := createUser(t, db, "alice", models.RoleUser)

	updated, err := svc.ChangeRole(db, alice.AsCaller(), alice.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestSetActive(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewUserService(config.AppConfig{})
	alice := createUser(t, db, "alice", models.RoleUser)
	admin := createUser(t, db, "root", models.RoleAdmin)

	_, err := svc.SetActive(db, alice.AsCaller(), alice.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.SetActive(db, admin.AsCaller(), alice.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	var reread models.User
	require.NoError(t, db.First(&reread, alice.ID).Error)
	assert.False(t, reread.IsActive)
}
