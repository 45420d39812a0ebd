package dto

import "github.com/emotionbox/emotionbox-server/internal/models"

type CreateReplyRequest struct {
	BoxID   string `json:"box_id"`
	Content string `json:"content"`
}

// ReplyPayload is a reply with its author reduced to the anonymous profile.
type ReplyPayload struct {
	*models.Reply
	Author models.AnonymousProfile `json:"author"`
}

func NewReplyPayload(reply *models.Reply) ReplyPayload {
	return ReplyPayload{Reply: reply, Author: reply.User.Anonymous()}
}

func NewReplyPayloads(replies []models.Reply) []ReplyPayload {
	out := make([]ReplyPayload, len(replies))
	for i := range replies {
		out[i] = NewReplyPayload(&replies[i])
	}
	return out
}
