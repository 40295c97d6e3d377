package services

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

const (
	ListLimitDefault = 50
	ListLimitMax     = 200
)

// TaskCreate carries the fields a caller may set at creation. Creator and
// initial status are derived, never supplied.
type TaskCreate struct {
	Title       string
	Description *string
	TopicID     *uint
	AssigneeID  *uint
	Priority    *int
	DueDate     *time.Time
}

// TaskUpdate is a sparse update: nil means "leave the field untouched",
// which is distinct from setting a field to its zero value. Creator and id
// are not represented and can never change.
type TaskUpdate struct {
	Title       *string
	Description *string
	TopicID     *uint
	AssigneeID  *uint
	Priority    *int
	DueDate     *time.Time
}

type TaskFilters struct {
	StatusID   *uint
	TopicID    *uint
	AssigneeID *uint
}

type TaskListQuery struct {
	Filters TaskFilters
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

type TaskService interface {
	CreateTask(db *gorm.DB, caller models.Caller, input TaskCreate) (models.Task, error)
	GetTask(db *gorm.DB, caller models.Caller, taskID uint) (models.Task, error)
	ListTasks(db *gorm.DB, caller models.Caller, query TaskListQuery) ([]models.Task, error)
	UpdateTask(db *gorm.DB, caller models.Caller, taskID uint, input TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, caller models.Caller, taskID uint) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
	"title":      "title",
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidField, "title must not be empty")
	}
	if len([]rune(title)) > models.TitleMaxLen {
		return apperrors.Wrap(apperrors.ErrInvalidField, "title must be at most %d characters", models.TitleMaxLen)
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < models.PriorityMin || priority > models.PriorityMax {
		return apperrors.Wrap(apperrors.ErrInvalidField, "priority must be between %d and %d", models.PriorityMin, models.PriorityMax)
	}
	return nil
}

func (s *TaskServiceImpl) checkTopicRef(db *gorm.DB, topicID uint) error {
	var count int64
	if err := db.Model(&models.Topic{}).Where("id = ?", topicID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidReference, "topic %d does not exist", topicID)
	}
	return nil
}

func (s *TaskServiceImpl) checkAssigneeRef(db *gorm.DB, userID uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidReference, "assignee %d does not exist", userID)
	}
	return nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, caller models.Caller, input TaskCreate) (models.Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return models.Task{}, err
	}

	priority := models.PriorityDefault
	if input.Priority != nil {
		priority = *input.Priority
	}
	if err := validatePriority(priority); err != nil {
		return models.Task{}, err
	}

	if input.TopicID != nil {
		if err := s.checkTopicRef(db, *input.TopicID); err != nil {
			return models.Task{}, err
		}
	}
	if input.AssigneeID != nil {
		if err := s.checkAssigneeRef(db, *input.AssigneeID); err != nil {
			return models.Task{}, err
		}
	}

	// New tasks start at the catalog entry with the lowest sort order, not a
	// hardcoded id, so the store survives catalog changes.
	var initial models.TaskStatus
	err := db.Order("sort_order ASC").First(&initial).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, apperrors.Wrap(apperrors.ErrConfiguration, "status catalog is empty")
	}
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		StatusID:    initial.ID,
		TopicID:     input.TopicID,
		CreatorID:   caller.ID,
		AssigneeID:  input.AssigneeID,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	task.Status = initial
	return task, nil
}

// GetTask distinguishes a missing task (NotFound) from an existing task
// outside the caller's scope (Forbidden); the latter is never reported as
// silently absent.
func (s *TaskServiceImpl) GetTask(db *gorm.DB, caller models.Caller, taskID uint) (models.Task, error) {
	var task models.Task
	err := db.First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, apperrors.Wrap(apperrors.ErrNotFound, "task %d", taskID)
	}
	if err != nil {
		return models.Task{}, err
	}
	if !ScopeFor(caller).Allows(task) {
		return models.Task{}, apperrors.Wrap(apperrors.ErrForbidden, "task %d", taskID)
	}
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, caller models.Caller, query TaskListQuery) ([]models.Task, error) {
	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(query.SortDir, "asc") {
		direction = "ASC"
	}

	limit := query.Limit
	if limit < 1 {
		limit = ListLimitDefault
	}
	if limit > ListLimitMax {
		limit = ListLimitMax
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	stmt := ScopeFor(caller).Apply(db.Model(&models.Task{}))
	if query.Filters.StatusID != nil {
		stmt = stmt.Where("status_id = ?", *query.Filters.StatusID)
	}
	if query.Filters.TopicID != nil {
		stmt = stmt.Where("topic_id = ?", *query.Filters.TopicID)
	}
	if query.Filters.AssigneeID != nil {
		stmt = stmt.Where("assignee_id = ?", *query.Filters.AssigneeID)
	}

	// Secondary order on id keeps pagination stable across equal sort keys.
	var tasks []models.Task
	err := stmt.Order(column + " " + direction).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, caller models.Caller, taskID uint, input TaskUpdate) (models.Task, error) {
	task, err := s.GetTask(db, caller, taskID)
	if err != nil {
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return models.Task{}, err
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.TopicID != nil {
		if err := s.checkTopicRef(db, *input.TopicID); err != nil {
			return models.Task{}, err
		}
		updates["topic_id"] = *input.TopicID
	}
	if input.AssigneeID != nil {
		if err := s.checkAssigneeRef(db, *input.AssigneeID); err != nil {
			return models.Task{}, err
		}
		updates["assignee_id"] = *input.AssigneeID
	}
	if input.Priority != nil {
		if err := validatePriority(*input.Priority); err != nil {
			return models.Task{}, err
		}
		updates["priority"] = *input.Priority
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if len(updates) == 0 {
		return task, nil
	}
	updates["updated_at"] = time.Now()

	if err := db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return models.Task{}, err
	}

	var updated models.Task
	if err := db.First(&updated, task.ID).Error; err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task together with its status history. The history
// belongs exclusively to the task, so both go in one transaction.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, caller models.Caller, taskID uint) error {
	task, err := s.GetTask(db, caller, taskID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskStatusHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, task.ID).Error
	})
}
