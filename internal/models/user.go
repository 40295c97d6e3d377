package models

import (
	"time"
)

// Role is the two-variant access level carried by every user. All
// authorization decisions route through services.ScopeFor; nothing else
// compares roles directly.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:50;not null"`
	Email        string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         Role      `json:"role" gorm:"size:20;not null;default:'user'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`

	CreatedTasks  []Task `json:"created_tasks,omitempty" gorm:"foreignKey:CreatorID"`
	AssignedTasks []Task `json:"assigned_tasks,omitempty" gorm:"foreignKey:AssigneeID"`
}

func (User) TableName() string { return "users" }

// Caller is the resolved identity handed to every core operation by the
// transport layer after token validation.
type Caller struct {
	ID   uint
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (u *User) AsCaller() Caller {
	return Caller{ID: u.ID, Role: u.Role}
}
