package models

import (
	"time"
)

// TaskStatusHistory is an append-only transition record. Rows are never
// updated or deleted except by cascade when the owning task is deleted.
// FromStatusID is null only for a status set at task creation, which the
// current engine does not record.
type TaskStatusHistory struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TaskID uint `json:"task_id" gorm:"not null;index"`

	FromStatusID *uint       `json:"from_status_id,omitempty"`
	FromStatus   *TaskStatus `json:"from_status,omitempty" gorm:"foreignKey:FromStatusID;constraint:OnDelete:SET NULL"`

	ToStatusID uint       `json:"to_status_id" gorm:"not null"`
	ToStatus   TaskStatus `json:"to_status,omitempty" gorm:"foreignKey:ToStatusID;constraint:OnDelete:RESTRICT"`

	ChangedByID uint `json:"changed_by_id" gorm:"not null;index"`
	ChangedBy   User `json:"changed_by,omitempty" gorm:"foreignKey:ChangedByID;constraint:OnDelete:RESTRICT"`

	ChangedAt time.Time `json:"changed_at" gorm:"not null;index"`
}

func (TaskStatusHistory) TableName() string { return "task_status_history" }
