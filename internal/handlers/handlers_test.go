package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
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

// asCaller replaces the token middleware in handler tests: every request on
// the returned router runs with the given identity.
func asCaller(caller models.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCaller(c, caller)
		c.Next()
	}
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:      "test_secret",
		AccessTokenTTL: time.Hour,
		BCryptCost:     4,
	}
}

// newRouter wires every handler against real services and the given DB,
// mirroring the route table in main.
func newRouter(db *gorm.DB, caller models.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)

	taskService := services.NewTaskService()
	statusService := services.NewStatusService(taskService)
	topicService := services.NewTopicService()
	analyticsService := services.NewAnalyticsService()
	userService := services.NewUserService(config.AppConfig{})
	authService := services.NewAuthService(testAuthConfig())
	registerService := services.NewRegisterService(testAuthConfig())

	taskHandler := handlers.NewTaskHandler(db, taskService, statusService, nil)
	topicHandler := handlers.NewTopicHandler(db, topicService)
	analyticsHandler := handlers.NewAnalyticsHandler(db, analyticsService)
	userHandler := handlers.NewUserHandler(db, userService)
	authHandler := handlers.NewAuthHandler(db, authService, registerService)

	r := gin.New()

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)

	authorized := r.Group("/")
	authorized.Use(asCaller(caller))
	{
		authorized.GET("/tasks", taskHandler.ListTasks)
		authorized.POST("/tasks", taskHandler.CreateTask)
		authorized.GET("/tasks/:id", taskHandler.GetTask)
		authorized.PATCH("/tasks/:id", taskHandler.UpdateTask)
		authorized.DELETE("/tasks/:id", taskHandler.DeleteTask)
		authorized.PATCH("/tasks/:id/status", taskHandler.ChangeTaskStatus)
		authorized.GET("/statuses", taskHandler.ListStatuses)

		authorized.GET("/topics", topicHandler.ListTopics)
		authorized.POST("/topics", topicHandler.CreateTopic)
		authorized.PATCH("/topics/:id", topicHandler.UpdateTopic)
		authorized.DELETE("/topics/:id", topicHandler.DeleteTopic)

		authorized.GET("/users/me", userHandler.Me)
		authorized.GET("/users", userHandler.ListUsers)
		authorized.PATCH("/users/:id/role", userHandler.ChangeRole)
		authorized.PATCH("/users/:id/active", userHandler.SetActive)

		authorized.GET("/analytics/statuses", analyticsHandler.StatusBreakdown)
		authorized.GET("/analytics/topics", analyticsHandler.TopicBreakdown)
		authorized.GET("/analytics/assignees", analyticsHandler.AssigneeBreakdown)
		authorized.GET("/analytics/summary", analyticsHandler.Summary)
		authorized.GET("/analytics/burndown", analyticsHandler.Burndown)
		authorized.GET("/analytics/lead_time", analyticsHandler.LeadTime)
	}

	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
