package dto

import (
	"github.com/emotionbox/emotionbox-server/internal/models"
)

type CreateBoxRequest struct {
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content"`
	Images     []string `json:"images,omitempty"`
	IsPublic   *bool    `json:"is_public,omitempty"`
	AllowReply *bool    `json:"allow_reply,omitempty"`
}

type UpdateBoxRequest struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Images     *[]string `json:"images,omitempty"`
	IsPublic   *bool     `json:"is_public,omitempty"`
	AllowReply *bool     `json:"allow_reply,omitempty"`
}

// ListBoxesQuery carries the public listing filters.
type ListBoxesQuery struct {
	Page       int
	Limit      int
	IsFeatured *bool
	Search     string
}

// AdminListBoxesQuery adds the admin-only filters on top of the public ones.
type AdminListBoxesQuery struct {
	Page       int
	Limit      int
	Status     string
	UserID     string
	IsFeatured *bool
	Search     string
	StartDate  string
	EndDate    string
}

// BoxPayload is a box with its author reduced to the anonymous profile.
type BoxPayload struct {
	*models.EmotionBox
	Author     models.AnonymousProfile `json:"author"`
	ReplyCount int64                   `json:"reply_count"`
}

// BoxDetailPayload additionally carries the active replies.
type BoxDetailPayload struct {
	BoxPayload
	Replies []ReplyPayload `json:"replies"`
}

func NewBoxPayload(box *models.EmotionBox, replyCount int64) BoxPayload {
	return BoxPayload{
		EmotionBox: box,
		Author:     box.User.Anonymous(),
		ReplyCount: replyCount,
	}
}
