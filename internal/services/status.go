package services

import (
	"errors"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

type StatusService interface {
	ListStatuses(db *gorm.DB) ([]models.TaskStatus, error)
	FindByCode(db *gorm.DB, code string) (models.TaskStatus, error)
	InitialStatus(db *gorm.DB) (models.TaskStatus, error)
	TerminalStatus(db *gorm.DB) (models.TaskStatus, error)
	ChangeStatus(db *gorm.DB, caller models.Caller, taskID uint, newStatusCode string) (models.Task, error)
}

type StatusServiceImpl struct {
	tasks TaskService
}

func NewStatusService(tasks TaskService) *StatusServiceImpl {
	return &StatusServiceImpl{tasks: tasks}
}

func (s *StatusServiceImpl) ListStatuses(db *gorm.DB) ([]models.TaskStatus, error) {
	var statuses []models.TaskStatus
	if err := db.Order("sort_order ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *StatusServiceImpl) FindByCode(db *gorm.DB, code string) (models.TaskStatus, error) {
	var status models.TaskStatus
	err := db.Where("code = ?", code).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, apperrors.Wrap(apperrors.ErrUnknownStatus, "%q", code)
	}
	return status, err
}

// InitialStatus is the catalog entry with the lowest sort order, by
// convention the seeded "new" row. New tasks start here.
func (s *StatusServiceImpl) InitialStatus(db *gorm.DB) (models.TaskStatus, error) {
	var status models.TaskStatus
	err := db.Order("sort_order ASC").First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, apperrors.Wrap(apperrors.ErrConfiguration, "status catalog is empty")
	}
	return status, err
}

// TerminalStatus is the completion state used by summary, burndown and lead
// time. The catalog must contain exactly one.
func (s *StatusServiceImpl) TerminalStatus(db *gorm.DB) (models.TaskStatus, error) {
	var status models.TaskStatus
	err := db.Where("is_terminal = ?", true).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return status, apperrors.Wrap(apperrors.ErrConfiguration, "no terminal status in catalog")
	}
	return status, err
}

// ChangeStatus moves a task to the status named by code and appends one
// immutable history row. Changing a task to its current status is an
// idempotent no-op and writes no history. The catalog's sort order is not a
// workflow constraint: any status may follow any other, including moving out
// of the terminal state.
func (s *StatusServiceImpl) ChangeStatus(db *gorm.DB, caller models.Caller, taskID uint, newStatusCode string) (models.Task, error) {
	task, err := s.tasks.GetTask(db, caller, taskID)
	if err != nil {
		return models.Task{}, err
	}

	newStatus, err := s.FindByCode(db, newStatusCode)
	if err != nil {
		return models.Task{}, err
	}

	if task.StatusID == newStatus.ID {
		return task, nil
	}

	oldStatusID := task.StatusID
	now := time.Now()

	// Task update and history append commit together or not at all.
	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{
				"status_id":  newStatus.ID,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}

		history := models.TaskStatusHistory{
			TaskID:       task.ID,
			FromStatusID: &oldStatusID,
			ToStatusID:   newStatus.ID,
			ChangedByID:  caller.ID,
			ChangedAt:    now,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	task.StatusID = newStatus.ID
	task.Status = newStatus
	task.UpdatedAt = now
	return task, nil
}
