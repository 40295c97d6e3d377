package services

import (
	"errors"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

type UserService interface {
	GetUser(db *gorm.DB, userID uint) (models.User, error)
	ListUsers(db *gorm.DB, caller models.Caller) ([]models.User, error)
	ChangeRole(db *gorm.DB, caller models.Caller, userID uint, role models.Role) (models.User, error)
	SetActive(db *gorm.DB, caller models.Caller, userID uint, active bool) (models.User, error)
}

type UserServiceImpl struct {
	cfg config.AppConfig
}

func NewUserService(cfg config.AppConfig) *UserServiceImpl {
	return &UserServiceImpl{cfg: cfg}
}

func (s *UserServiceImpl) GetUser(db *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperrors.Wrap(apperrors.ErrNotFound, "user %d", userID)
	}
	return user, err
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB, caller models.Caller) ([]models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ChangeRole is admin-only unless the permissive self-assign flag is set, in
// which case any caller may change any role. The flag exists for local
// testing of role-dependent behavior.
func (s *UserServiceImpl) ChangeRole(db *gorm.DB, caller models.Caller, userID uint, role models.Role) (models.User, error) {
	if !s.cfg.AllowRoleSelfAssign {
		if err := requireAdmin(caller); err != nil {
			return models.User{}, err
		}
	}
	if !role.Valid() {
		return models.User{}, apperrors.Wrap(apperrors.ErrInvalidField, "unknown role %q", role)
	}

	user, err := s.GetUser(db, userID)
	if err != nil {
		return models.User{}, err
	}

	if err := db.Model(&user).Update("role", role).Error; err != nil {
		return models.User{}, err
	}
	user.Role = role
	return user, nil
}

func (s *UserServiceImpl) SetActive(db *gorm.DB, caller models.Caller, userID uint, active bool) (models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return models.User{}, err
	}

	user, err := s.GetUser(db, userID)
	if err != nil {
		return models.User{}, err
	}

	if err := db.Model(&user).Update("is_active", active).Error; err != nil {
		return models.User{}, err
	}
	user.IsActive = active
	return user, nil
}
