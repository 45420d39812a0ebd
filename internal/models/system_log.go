package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores structured ERROR+ log records for the admin console.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
	Level     string         `gorm:"size:10" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	RequestID string         `gorm:"size:64" json:"request_id,omitempty"`
	UserID    *string        `gorm:"size:36" json:"user_id,omitempty"`
	Action    string         `gorm:"size:100" json:"action,omitempty"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	Extra     datatypes.JSON `json:"extra,omitempty"`
}

func (SystemLog) TableName() string { return "system_logs" }
