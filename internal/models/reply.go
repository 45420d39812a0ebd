package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReplyStatusActive  = "ACTIVE"
	ReplyStatusDeleted = "DELETED"
)

// Reply is a response to a drawn box. The partial unique index enforces
// one ACTIVE reply per (box, user); a soft-deleted reply frees the slot.
// LikeCount is a denormalized cache of count(likes) and is only ever
// updated in the same transaction as the Like row itself.
type Reply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BoxID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_replies_box_user_active,where:status = 'ACTIVE'" json:"box_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_replies_box_user_active,where:status = 'ACTIVE'" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	LikeCount int       `gorm:"default:0" json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User       `gorm:"foreignKey:UserID" json:"-"`
	Box  EmotionBox `gorm:"foreignKey:BoxID" json:"-"`
}

func (r *Reply) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Like existence is the "liked" state for a (reply, user) pair; there
// is no separate boolean anywhere.
type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReplyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_reply_user" json:"reply_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_reply_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Reply Reply `gorm:"foreignKey:ReplyID" json:"-"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
