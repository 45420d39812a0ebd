package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles are stored uppercase; NormalizeRole is the single place raw
// strings are turned into the closed enum.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// NormalizeRole maps any stored or submitted role string onto the
// USER/ADMIN enum. Unknown values fall back to USER.
func NormalizeRole(role string) string {
	if strings.EqualFold(role, RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// User is a registered student account. Phone is the login identity;
// AnonymousName is what other users see on boxes and replies.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username      string    `gorm:"size:50;not null;index" json:"username"`
	Phone         string    `gorm:"size:20;not null;uniqueIndex" json:"phone"`
	StudentID     *string   `gorm:"size:30;uniqueIndex" json:"student_id,omitempty"`
	School        string    `gorm:"size:100" json:"school,omitempty"`
	Grade         string    `gorm:"size:20" json:"grade,omitempty"`
	Password      string    `gorm:"not null" json:"-"`
	Role          string    `gorm:"size:20;default:'USER'" json:"role"`
	IsActive      bool      `json:"is_active"`
	AnonymousName string    `gorm:"size:50" json:"anonymous_name"`
	IsAnonymous   bool      `json:"is_anonymous"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AnonymousProfile is the author shape exposed on boxes and replies.
type AnonymousProfile struct {
	ID            uuid.UUID `json:"id"`
	AnonymousName string    `json:"anonymous_name"`
	IsAnonymous   bool      `json:"is_anonymous"`
}

func (u *User) Anonymous() AnonymousProfile {
	return AnonymousProfile{
		ID:            u.ID,
		AnonymousName: u.AnonymousName,
		IsAnonymous:   u.IsAnonymous,
	}
}
