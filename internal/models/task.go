package models

import (
	"time"
)

const (
	TitleMaxLen     = 200
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

type Task struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"size:200;not null;index"`
	Description *string `json:"description,omitempty" gorm:"type:text"`

	StatusID uint       `json:"status_id" gorm:"not null;index"`
	Status   TaskStatus `json:"status,omitempty" gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT"`

	TopicID *uint  `json:"topic_id,omitempty" gorm:"index"`
	Topic   *Topic `json:"topic,omitempty" gorm:"foreignKey:TopicID;constraint:OnDelete:SET NULL"`

	CreatorID uint `json:"creator_id" gorm:"not null;index"`
	Creator   User `json:"creator,omitempty" gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT"`

	AssigneeID *uint `json:"assignee_id,omitempty" gorm:"index"`
	Assignee   *User `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`

	Priority  int        `json:"priority" gorm:"not null;default:3"`
	DueDate   *time.Time `json:"due_date,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	History []TaskStatusHistory `json:"history,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (Task) TableName() string { return "tasks" }
