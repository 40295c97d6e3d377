package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Token holds an issued refresh token. Access tokens are stateless JWTs and
// are never persisted.
type Token struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"type:uuid;uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Token) TableName() string { return "tokens" }
