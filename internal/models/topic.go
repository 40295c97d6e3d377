package models

type Topic struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description *string `json:"description,omitempty" gorm:"size:255"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:TopicID"`
}

func (Topic) TableName() string { return "topics" }
