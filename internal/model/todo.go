package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo represents a user-owned task with text content and a completion flag.
type Todo struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"size:1024;not null"`
	Completed bool           `json:"completed" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
