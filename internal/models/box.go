package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Box status values. Deletion and archival are soft: the row stays,
// the status changes, and non-admin readers see a plain not-found.
const (
	BoxStatusActive   = "ACTIVE"
	BoxStatusArchived = "ARCHIVED"
	BoxStatusDeleted  = "DELETED"
)

// EmotionBox is an anonymous emotion narrative. ViewCount is mutated
// only by the view/draw pipeline, always together with a BoxView row.
type EmotionBox struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string                      `gorm:"size:100" json:"title"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	Images     datatypes.JSONSlice[string] `json:"images"`
	IsPublic   bool                        `json:"is_public"`
	AllowReply bool                        `json:"allow_reply"`
	IsFeatured bool                        `gorm:"index" json:"is_featured"`
	Status     string                      `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	ViewCount  int                         `gorm:"default:0" json:"view_count"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (b *EmotionBox) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BoxView records that a user has already been shown a box, via detail
// view or random draw. It is the dedup ledger for the draw: one row per
// (box, user), never updated or deleted.
type BoxView struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoxID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_box_views_box_user" json:"box_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_box_views_box_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *BoxView) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
