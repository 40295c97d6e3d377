package models

// TaskStatus is one row of the seeded lifecycle catalog. SortOrder defines
// display ordering only; it is not a workflow constraint. Exactly one row
// carries IsTerminal.
type TaskStatus struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Code       string `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name       string `json:"name" gorm:"size:100;not null"`
	SortOrder  int    `json:"sort_order" gorm:"not null;default:0"`
	IsTerminal bool   `json:"is_terminal" gorm:"not null;default:false"`
}

func (TaskStatus) TableName() string { return "task_statuses" }
