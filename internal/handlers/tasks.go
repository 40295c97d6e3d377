package handlers

import (
	"net/http"
	"strconv"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db            *gorm.DB
	taskService   services.TaskService
	statusService services.StatusService
	analytics     *services.CachedAnalyticsService
}

// NewTaskHandler wires the task store and transition engine; analytics may
// be nil when caching is disabled.
func NewTaskHandler(db *gorm.DB, taskService services.TaskService, statusService services.StatusService, analytics *services.CachedAnalyticsService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, statusService: statusService, analytics: analytics}
}

func (h *TaskHandler) invalidateAnalytics() {
	if h.analytics != nil {
		h.analytics.Invalidate()
	}
}

type taskCreateInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	TopicID     *uint   `json:"topic_id"`
	AssigneeID  *uint   `json:"assignee_id"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
}

type taskUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TopicID     *uint   `json:"topic_id"`
	AssigneeID  *uint   `json:"assignee_id"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func parseDueDate(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_field", "message": "due_date must be YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_field", "message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input taskCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	dueDate, ok := parseDueDate(c, input.DueDate)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(h.db, caller, services.TaskCreate{
		Title:       input.Title,
		Description: input.Description,
		TopicID:     input.TopicID,
		AssigneeID:  input.AssigneeID,
		Priority:    input.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.invalidateAnalytics()
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(h.db, caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func queryUint(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	value := uint(parsed)
	return &value
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := services.TaskListQuery{
		Filters: services.TaskFilters{
			StatusID:   queryUint(c, "status_id"),
			TopicID:    queryUint(c, "topic_id"),
			AssigneeID: queryUint(c, "assignee_id"),
		},
		SortBy:  c.DefaultQuery("sort_by", "created_at"),
		SortDir: c.DefaultQuery("sort_dir", "desc"),
		Limit:   limit,
		Offset:  offset,
	}

	tasks, err := h.taskService.ListTasks(h.db, caller, query)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input taskUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	dueDate, ok := parseDueDate(c, input.DueDate)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(h.db, caller, id, services.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		TopicID:     input.TopicID,
		AssigneeID:  input.AssigneeID,
		Priority:    input.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.invalidateAnalytics()
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(h.db, caller, id); err != nil {
		handleServiceError(c, err)
		return
	}

	h.invalidateAnalytics()
	c.JSON(http.StatusNoContent, nil)
}

type statusChangeInput struct {
	StatusCode string `json:"status_code" binding:"required"`
}

func (h *TaskHandler) ChangeTaskStatus(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input statusChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	task, err := h.statusService.ChangeStatus(h.db, caller, id, input.StatusCode)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.invalidateAnalytics()
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.statusService.ListStatuses(h.db)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}
