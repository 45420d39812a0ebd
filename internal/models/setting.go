package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemSetting is a key/value/description triple. Values are stored as
// strings; services read them through the typed SettingService getters.
type SystemSetting struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SettingKey   string    `gorm:"size:100;not null;uniqueIndex" json:"setting_key"`
	SettingValue string    `gorm:"type:text;not null" json:"setting_value"`
	Description  string    `gorm:"size:255" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *SystemSetting) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
