package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	replyContentMin = 5
	replyContentMax = 1000
)

// errLikeRace aborts the like transaction when the unique index reports
// the like already exists. Never escapes ToggleLike.
var errLikeRace = errors.New("like already exists")

// ReplyService handles replies and the like toggle. like_count is a
// denormalized cache of count(likes); it only ever changes in the same
// transaction as the Like row, so the two cannot drift.
type ReplyService struct {
	db         *gorm.DB
	moderation *ModerationService
	settings   *SettingService
}

func NewReplyService(db *gorm.DB, moderation *ModerationService, settings *SettingService) *ReplyService {
	return &ReplyService{db: db, moderation: moderation, settings: settings}
}

func (s *ReplyService) Create(userID, boxID uuid.UUID, content string) (*dto.ReplyPayload, error) {
	length := utf8.RuneCountInString(content)
	if length < replyContentMin || length > replyContentMax {
		return nil, fmt.Errorf("%w: 回复长度需在 %d 到 %d 字之间", ErrValidation, replyContentMin, replyContentMax)
	}

	var box models.EmotionBox
	if err := s.db.First(&box, "id = ?", boxID).Error; err != nil {
		return nil, fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}
	if box.Status != models.BoxStatusActive {
		return nil, fmt.Errorf("%w: 盲盒不可用", ErrNotFound)
	}
	if !box.AllowReply {
		return nil, fmt.Errorf("%w: 该盲盒不允许回复", ErrValidation)
	}

	var existing models.Reply
	err := s.db.Where("box_id = ? AND user_id = ? AND status = ?",
		boxID, userID, models.ReplyStatusActive).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: 您已回复过该盲盒", ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if check := s.moderation.CheckContent(content); check.Blocked {
		return nil, fmt.Errorf("%w: 回复内容包含敏感信息，请修改后重试", ErrValidation)
	}

	reply := models.Reply{
		BoxID:   boxID,
		UserID:  userID,
		Content: content,
		Status:  models.ReplyStatusActive,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		// The partial unique index turns a concurrent double submit
		// into a conflict instead of a duplicate row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 您已回复过该盲盒", ErrConflict)
		}
		return nil, err
	}

	if err := s.db.Preload("User").First(&reply, "id = ?", reply.ID).Error; err != nil {
		return nil, err
	}
	payload := dto.NewReplyPayload(&reply)
	return &payload, nil
}

func (s *ReplyService) Delete(replyID, userID uuid.UUID, role string) error {
	var reply models.Reply
	if err := s.db.First(&reply, "id = ?", replyID).Error; err != nil {
		return fmt.Errorf("%w: 回复不存在", ErrNotFound)
	}

	if reply.UserID != userID && models.NormalizeRole(role) != models.RoleAdmin {
		return fmt.Errorf("%w: 无权删除该回复", ErrForbidden)
	}

	return s.db.Model(&reply).Update("status", models.ReplyStatusDeleted).Error
}

// ToggleLike flips the (reply, user) like. Row and counter move
// together inside one transaction. Returns the resulting liked state.
func (s *ReplyService) ToggleLike(replyID, userID uuid.UUID) (bool, error) {
	var reply models.Reply
	if err := s.db.First(&reply, "id = ?", replyID).Error; err != nil {
		return false, fmt.Errorf("%w: 回复不存在", ErrNotFound)
	}
	if reply.Status != models.ReplyStatusActive {
		return false, fmt.Errorf("%w: 回复不可用", ErrNotFound)
	}

	var liked bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("reply_id = ? AND user_id = ?", replyID, userID).First(&existing).Error
		if err == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&models.Reply{}).
				Where("id = ?", replyID).
				Update("like_count", gorm.Expr("like_count - 1")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like := models.Like{ReplyID: replyID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			// A concurrent like slipped in between the check and the
			// insert; its transaction already moved the counter.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errLikeRace
			}
			return err
		}
		liked = true
		return tx.Model(&models.Reply{}).
			Where("id = ?", replyID).
			Update("like_count", gorm.Expr("like_count + 1")).Error
	})
	if errors.Is(err, errLikeRace) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if liked {
		s.evaluateAutoFeature(reply.BoxID)
	}
	return liked, nil
}

func (s *ReplyService) LikeStatus(replyID, userID uuid.UUID) (bool, error) {
	var like models.Like
	err := s.db.Where("reply_id = ? AND user_id = ?", replyID, userID).First(&like).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// evaluateAutoFeature promotes a box once its replies have collected
// enough likes. Evaluated opportunistically after a like lands; a
// failure here never fails the like itself.
func (s *ReplyService) evaluateAutoFeature(boxID uuid.UUID) {
	threshold := s.settings.GetInt(KeyAutoFeaturedThreshold, 5)

	var totalLikes int64
	err := s.db.Model(&models.Reply{}).
		Where("box_id = ? AND status = ?", boxID, models.ReplyStatusActive).
		Select("COALESCE(SUM(like_count), 0)").
		Scan(&totalLikes).Error
	if err != nil {
		slog.Error("auto-feature evaluation failed", "box_id", boxID, "error", err)
		return
	}

	if totalLikes < int64(threshold) {
		return
	}

	err = s.db.Model(&models.EmotionBox{}).
		Where("id = ? AND is_featured = ?", boxID, false).
		Update("is_featured", true).Error
	if err != nil {
		slog.Error("auto-feature update failed", "box_id", boxID, "error", err)
	}
}

// AdminListRepliesQuery carries the admin reply filters.
type AdminListRepliesQuery struct {
	Page      int
	Limit     int
	Status    string
	BoxID     string
	UserID    string
	MinLikes  int
	Search    string
	StartDate string
	EndDate   string
}

func (s *ReplyService) AdminList(q *AdminListRepliesQuery) ([]dto.ReplyPayload, int64, error) {
	query := s.db.Model(&models.Reply{})

	if q.Status != "" && q.Status != "ALL" {
		query = query.Where("status = ?", q.Status)
	}
	if q.BoxID != "" {
		query = query.Where("box_id = ?", q.BoxID)
	}
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.MinLikes > 0 {
		query = query.Where("like_count >= ?", q.MinLikes)
	}
	if q.Search != "" {
		query = query.Where("content LIKE ?", "%"+q.Search+"%")
	}
	if q.StartDate != "" {
		if t, err := time.Parse("2006-01-02", q.StartDate); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if q.EndDate != "" {
		if t, err := time.Parse("2006-01-02", q.EndDate); err == nil {
			query = query.Where("created_at <= ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var replies []models.Reply
	err := query.Preload("User").Preload("Box").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&replies).Error
	if err != nil {
		return nil, 0, err
	}

	return dto.NewReplyPayloads(replies), total, nil
}
