package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sensitive word levels: WARNING is flagged but allowed, BLOCK rejects
// the submission outright.
const (
	WordLevelWarning = "WARNING"
	WordLevelBlock   = "BLOCK"
)

// SensitiveWord is one entry of the admin-managed moderation word list.
type SensitiveWord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Word      string    `gorm:"size:100;not null;uniqueIndex" json:"word"`
	Level     string    `gorm:"size:20;not null;default:'BLOCK'" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *SensitiveWord) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
