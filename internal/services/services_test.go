package services_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedStatuses(db))

	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTopic(t *testing.T, db *gorm.DB, name string) models.Topic {
	t.Helper()
	topic := models.Topic{Name: name}
	require.NoError(t, db.Create(&topic).Error)
	return topic
}

func statusByCode(t *testing.T, db *gorm.DB, code string) models.TaskStatus {
	t.Helper()
	var status models.TaskStatus
	require.NoError(t, db.Where("code = ?", code).First(&status).Error)
	return status
}

func createTask(t *testing.T, db *gorm.DB, creator models.User, title string) models.Task {
	t.Helper()
	svc := services.NewTaskService()
	task, err := svc.CreateTask(db, creator.AsCaller(), services.TaskCreate{Title: title})
	require.NoError(t, err)
	return task
}

// appendHistory inserts a transition row directly, with a controlled
// timestamp, for analytics fixtures.
func appendHistory(t *testing.T, db *gorm.DB, task models.Task, from *uint, to uint, by models.User, at time.Time) {
	t.Helper()
	row := models.TaskStatusHistory{
		TaskID:       task.ID,
		FromStatusID: from,
		ToStatusID:   to,
		ChangedByID:  by.ID,
		ChangedAt:    at,
	}
	require.NoError(t, db.Create(&row).Error)
}

func uintPtr(v uint) *uint          { return &v }
func intPtr(v int) *int             { return &v }
func strPtr(v string) *string       { return &v }
func timePtr(v time.Time) *time.Time { return &v }
