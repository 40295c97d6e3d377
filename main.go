package main

import (
	"log"
	"net/http"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.Database.DSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
	if cfg.Server.Environment == "production" {
		poolConfig.LogLevel = logger.Warn
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()
	db := pool.DB

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	if err := database.SeedStatuses(db); err != nil {
		log.Fatalf("failed to seed status catalog: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	taskService := services.NewTaskService()
	statusService := services.NewStatusService(taskService)
	topicService := services.NewTopicService()
	analyticsService := services.NewAnalyticsService()
	userService := services.NewUserService(cfg.App)
	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService(cfg.Auth)

	var cachedAnalytics *services.CachedAnalyticsService
	var analyticsForHandlers services.AnalyticsService = analyticsService
	if err := redisCache.Ping(); err != nil {
		log.Printf("redis unavailable, analytics caching disabled: %v", err)
	} else {
		cachedAnalytics = services.NewCachedAnalyticsService(analyticsService, redisCache)
		analyticsForHandlers = cachedAnalytics
	}

	taskHandler := handlers.NewTaskHandler(db, taskService, statusService, cachedAnalytics)
	topicHandler := handlers.NewTopicHandler(db, topicService)
	analyticsHandler := handlers.NewAnalyticsHandler(db, analyticsForHandlers)
	userHandler := handlers.NewUserHandler(db, userService)
	authHandler := handlers.NewAuthHandler(db, authService, registerService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	router.GET("/health", monitoring.HealthHandler(map[string]func() error{
		"database": func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
		"redis": redisCache.Ping,
	}))
	router.GET("/metrics", monitoring.MetricsHandler)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)

	authorized := router.Group("/", middleware.AuthMiddleware(db, authService))
	{
		authorized.GET("/users/me", userHandler.Me)
		authorized.GET("/users", userHandler.ListUsers)
		authorized.PATCH("/users/:id/role", userHandler.ChangeRole)
		authorized.PATCH("/users/:id/active", userHandler.SetActive)

		authorized.GET("/topics", topicHandler.ListTopics)
		authorized.POST("/topics", topicHandler.CreateTopic)
		authorized.PATCH("/topics/:id", topicHandler.UpdateTopic)
		authorized.DELETE("/topics/:id", topicHandler.DeleteTopic)

		authorized.GET("/statuses", taskHandler.ListStatuses)

		authorized.POST("/tasks", taskHandler.CreateTask)
		authorized.GET("/tasks", taskHandler.ListTasks)
		authorized.GET("/tasks/:id", taskHandler.GetTask)
		authorized.PATCH("/tasks/:id", taskHandler.UpdateTask)
		authorized.DELETE("/tasks/:id", taskHandler.DeleteTask)
		authorized.PATCH("/tasks/:id/status", taskHandler.ChangeTaskStatus)

		authorized.GET("/analytics/statuses", analyticsHandler.StatusBreakdown)
		authorized.GET("/analytics/topics", analyticsHandler.TopicBreakdown)
		authorized.GET("/analytics/assignees", analyticsHandler.AssigneeBreakdown)
		authorized.GET("/analytics/summary", analyticsHandler.Summary)
		authorized.GET("/analytics/burndown", analyticsHandler.Burndown)
		authorized.GET("/analytics/lead_time", analyticsHandler.LeadTime)
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
