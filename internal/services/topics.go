package services

import (
	"errors"
	"strings"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

type TopicCreate struct {
	Name        string
	Description *string
}

// TopicUpdate follows the same sparse-update convention as TaskUpdate.
type TopicUpdate struct {
	Name        *string
	Description *string
}

type TopicService interface {
	ListTopics(db *gorm.DB) ([]models.Topic, error)
	CreateTopic(db *gorm.DB, caller models.Caller, input TopicCreate) (models.Topic, error)
	UpdateTopic(db *gorm.DB, caller models.Caller, topicID uint, input TopicUpdate) (models.Topic, error)
	DeleteTopic(db *gorm.DB, caller models.Caller, topicID uint) error
}

type TopicServiceImpl struct{}

func NewTopicService() *TopicServiceImpl {
	return &TopicServiceImpl{}
}

func (s *TopicServiceImpl) ListTopics(db *gorm.DB) ([]models.Topic, error) {
	var topics []models.Topic
	if err := db.Order("name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func requireAdmin(caller models.Caller) error {
	if !ScopeFor(caller).Unrestricted() {
		return apperrors.Wrap(apperrors.ErrForbidden, "admin only")
	}
	return nil
}

func validateTopicName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidField, "topic name must not be empty")
	}
	if len([]rune(name)) > 100 {
		return apperrors.Wrap(apperrors.ErrInvalidField, "topic name must be at most 100 characters")
	}
	return nil
}

func (s *TopicServiceImpl) CreateTopic(db *gorm.DB, caller models.Caller, input TopicCreate) (models.Topic, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Topic{}, err
	}
	if err := validateTopicName(input.Name); err != nil {
		return models.Topic{}, err
	}

	var existing models.Topic
	err := db.Where("name = ?", input.Name).First(&existing).Error
	if err == nil {
		return models.Topic{}, apperrors.Wrap(apperrors.ErrConflict, "topic %q already exists", input.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Topic{}, err
	}

	topic := models.Topic{Name: input.Name, Description: input.Description}
	if err := db.Create(&topic).Error; err != nil {
		return models.Topic{}, err
	}
	return topic, nil
}

func (s *TopicServiceImpl) UpdateTopic(db *gorm.DB, caller models.Caller, topicID uint, input TopicUpdate) (models.Topic, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Topic{}, err
	}

	var topic models.Topic
	err := db.First(&topic, topicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Topic{}, apperrors.Wrap(apperrors.ErrNotFound, "topic %d", topicID)
	}
	if err != nil {
		return models.Topic{}, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if err := validateTopicName(*input.Name); err != nil {
			return models.Topic{}, err
		}
		var dup models.Topic
		err := db.Where("name = ? AND id <> ?", *input.Name, topicID).First(&dup).Error
		if err == nil {
			return models.Topic{}, apperrors.Wrap(apperrors.ErrConflict, "topic %q already exists", *input.Name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Topic{}, err
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) == 0 {
		return topic, nil
	}
	if err := db.Model(&topic).Updates(updates).Error; err != nil {
		return models.Topic{}, err
	}
	return topic, nil
}

// DeleteTopic removes a topic; referencing tasks survive with a cleared
// topic reference.
func (s *TopicServiceImpl) DeleteTopic(db *gorm.DB, caller models.Caller, topicID uint) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	var topic models.Topic
	err := db.First(&topic, topicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrNotFound, "topic %d", topicID)
	}
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("topic_id = ?", topic.ID).
			Update("topic_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Topic{}, topic.ID).Error
	})
}
