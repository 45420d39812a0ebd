package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	boxContentMin = 10
	boxContentMax = 2000
)

// BoxService owns the box lifecycle and the random draw. Every path
// that shows a box to a user goes through the same BoxView ledger, so a
// box seen once, by detail view or by draw, is never offered again.
type BoxService struct {
	db         *gorm.DB
	moderation *ModerationService
	settings   *SettingService
}

func NewBoxService(db *gorm.DB, moderation *ModerationService, settings *SettingService) *BoxService {
	return &BoxService{db: db, moderation: moderation, settings: settings}
}

func (s *BoxService) Create(userID uuid.UUID, req *dto.CreateBoxRequest) (*dto.BoxPayload, error) {
	length := utf8.RuneCountInString(req.Content)
	if length < boxContentMin || length > boxContentMax {
		return nil, fmt.Errorf("%w: 内容长度需在 %d 到 %d 字之间", ErrValidation, boxContentMin, boxContentMax)
	}

	maxImages := s.settings.GetInt(KeyMaxImagesPerBox, 3)
	if len(req.Images) > maxImages {
		return nil, fmt.Errorf("%w: 最多上传 %d 张图片", ErrValidation, maxImages)
	}

	dailyLimit := s.settings.GetInt(KeyDailyBoxLimit, 3)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayCount int64
	s.db.Model(&models.EmotionBox{}).
		Where("user_id = ? AND created_at >= ?", userID, today).
		Count(&todayCount)
	if todayCount >= int64(dailyLimit) {
		return nil, fmt.Errorf("%w: 今日发布数量已达上限（%d 个）", ErrValidation, dailyLimit)
	}

	if check := s.moderation.CheckContent(req.Title + " " + req.Content); check.Blocked {
		return nil, fmt.Errorf("%w: 内容包含敏感信息，请修改后重试", ErrValidation)
	}

	box := models.EmotionBox{
		UserID:     userID,
		Title:      req.Title,
		Content:    req.Content,
		Images:     datatypes.JSONSlice[string](req.Images),
		IsPublic:   true,
		AllowReply: true,
		Status:     models.BoxStatusActive,
	}
	if req.IsPublic != nil {
		box.IsPublic = *req.IsPublic
	}
	if req.AllowReply != nil {
		box.AllowReply = *req.AllowReply
	}

	if err := s.db.Create(&box).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&box, "id = ?", box.ID).Error; err != nil {
		return nil, err
	}

	payload := dto.NewBoxPayload(&box, 0)
	return &payload, nil
}

// GetByID returns an ACTIVE box with its active replies. The first view
// by a given user inserts a BoxView and bumps the counter in one
// transaction; later views change nothing.
func (s *BoxService) GetByID(boxID, viewerID uuid.UUID) (*dto.BoxDetailPayload, error) {
	var box models.EmotionBox
	if err := s.db.Preload("User").First(&box, "id = ?", boxID).Error; err != nil {
		return nil, fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}
	if box.Status != models.BoxStatusActive {
		return nil, fmt.Errorf("%w: 盲盒不可用", ErrNotFound)
	}

	if viewerID != uuid.Nil {
		recorded, err := s.recordView(boxID, viewerID)
		if err != nil {
			return nil, err
		}
		if recorded {
			box.ViewCount++
		}
	}

	var replies []models.Reply
	if err := s.db.Preload("User").
		Where("box_id = ? AND status = ?", boxID, models.ReplyStatusActive).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		return nil, err
	}

	detail := dto.BoxDetailPayload{
		BoxPayload: dto.NewBoxPayload(&box, int64(len(replies))),
		Replies:    dto.NewReplyPayloads(replies),
	}
	return &detail, nil
}

// recordView inserts the BoxView and increments view_count together.
// The unique index on (box_id, user_id) makes a concurrent duplicate a
// no-op instead of a double increment.
func (s *BoxService) recordView(boxID, userID uuid.UUID) (bool, error) {
	var existing models.BoxView
	err := s.db.Where("box_id = ? AND user_id = ?", boxID, userID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		view := models.BoxView{BoxID: boxID, UserID: userID}
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.EmotionBox{}).
			Where("id = ?", boxID).
			Update("view_count", gorm.Expr("view_count + 1")).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BoxService) List(q *dto.ListBoxesQuery) ([]dto.BoxPayload, int64, error) {
	query := s.db.Model(&models.EmotionBox{}).
		Where("status = ? AND is_public = ?", models.BoxStatusActive, true)

	if q.IsFeatured != nil {
		query = query.Where("is_featured = ?", *q.IsFeatured)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	order := "created_at DESC"
	if q.IsFeatured != nil && *q.IsFeatured {
		order = "is_featured DESC, created_at DESC"
	}

	var boxes []models.EmotionBox
	err := query.Preload("User").
		Order(order).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&boxes).Error
	if err != nil {
		return nil, 0, err
	}

	return s.toPayloads(boxes), total, nil
}

// Update edits an unseen box. Owners lose edit access the moment anyone
// has viewed the box; admins are not bound by the lock.
func (s *BoxService) Update(boxID, userID uuid.UUID, role string, req *dto.UpdateBoxRequest) (*dto.BoxPayload, error) {
	var box models.EmotionBox
	if err := s.db.First(&box, "id = ?", boxID).Error; err != nil {
		return nil, fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}

	isOwner := box.UserID == userID
	isAdmin := models.NormalizeRole(role) == models.RoleAdmin
	if !isOwner && !isAdmin {
		return nil, fmt.Errorf("%w: 无权修改该盲盒", ErrForbidden)
	}
	if isOwner && box.ViewCount > 0 {
		return nil, fmt.Errorf("%w: 盲盒已被查看，无法修改", ErrValidation)
	}

	content := box.Content
	if req.Content != nil {
		content = *req.Content
		length := utf8.RuneCountInString(content)
		if length < boxContentMin || length > boxContentMax {
			return nil, fmt.Errorf("%w: 内容长度需在 %d 到 %d 字之间", ErrValidation, boxContentMin, boxContentMax)
		}
	}
	title := box.Title
	if req.Title != nil {
		title = *req.Title
	}

	if check := s.moderation.CheckContent(title + " " + content); check.Blocked {
		return nil, fmt.Errorf("%w: 内容包含敏感信息，请修改后重试", ErrValidation)
	}

	updates := map[string]any{
		"title":   title,
		"content": content,
	}
	if req.Images != nil {
		maxImages := s.settings.GetInt(KeyMaxImagesPerBox, 3)
		if len(*req.Images) > maxImages {
			return nil, fmt.Errorf("%w: 最多上传 %d 张图片", ErrValidation, maxImages)
		}
		updates["images"] = datatypes.JSONSlice[string](*req.Images)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.AllowReply != nil {
		updates["allow_reply"] = *req.AllowReply
	}

	if err := s.db.Model(&box).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&box, "id = ?", boxID).Error; err != nil {
		return nil, err
	}
	payload := dto.NewBoxPayload(&box, s.activeReplyCount(boxID))
	return &payload, nil
}

// Delete soft-deletes. Unlike editing, the owner may always delete,
// viewed or not.
func (s *BoxService) Delete(boxID, userID uuid.UUID, role string) error {
	var box models.EmotionBox
	if err := s.db.First(&box, "id = ?", boxID).Error; err != nil {
		return fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}

	if box.UserID != userID && models.NormalizeRole(role) != models.RoleAdmin {
		return fmt.Errorf("%w: 无权删除该盲盒", ErrForbidden)
	}

	return s.db.Model(&box).Update("status", models.BoxStatusDeleted).Error
}

// DrawRandom picks one unseen, not-self-authored, public active box
// uniformly at random and records the view. Exhaustion is the normal
// terminal state: every eligible box has been offered exactly once.
func (s *BoxService) DrawRandom(userID uuid.UUID) (*dto.BoxPayload, error) {
	var viewedIDs []uuid.UUID
	if err := s.db.Model(&models.BoxView{}).
		Where("user_id = ?", userID).
		Pluck("box_id", &viewedIDs).Error; err != nil {
		return nil, err
	}

	var ownedIDs []uuid.UUID
	if err := s.db.Model(&models.EmotionBox{}).
		Where("user_id = ?", userID).
		Pluck("id", &ownedIDs).Error; err != nil {
		return nil, err
	}

	query := s.db.Preload("User").
		Where("status = ? AND is_public = ?", models.BoxStatusActive, true)
	if excluded := append(viewedIDs, ownedIDs...); len(excluded) > 0 {
		query = query.Where("id NOT IN ?", excluded)
	}

	var candidates []models.EmotionBox
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoBoxAvailable
	}

	box := candidates[rand.Intn(len(candidates))]

	// The box was excluded from candidates unless unseen, so the ledger
	// insert cannot conflict here; recordView still tolerates a race
	// with a concurrent direct view.
	if _, err := s.recordView(box.ID, userID); err != nil {
		return nil, err
	}
	box.ViewCount++

	payload := dto.NewBoxPayload(&box, s.activeReplyCount(box.ID))
	return &payload, nil
}

// Feature toggles the featured flag, admin only, independent of the
// view-count lock.
func (s *BoxService) Feature(boxID uuid.UUID, featured bool) error {
	result := s.db.Model(&models.EmotionBox{}).
		Where("id = ?", boxID).
		Update("is_featured", featured)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}
	return nil
}

// Archive takes a box off the shelf without deleting it.
func (s *BoxService) Archive(boxID uuid.UUID) error {
	result := s.db.Model(&models.EmotionBox{}).
		Where("id = ?", boxID).
		Update("status", models.BoxStatusArchived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 盲盒不存在", ErrNotFound)
	}
	return nil
}

// AdminList sees every status, every visibility.
func (s *BoxService) AdminList(q *dto.AdminListBoxesQuery) ([]dto.BoxPayload, int64, error) {
	query := s.db.Model(&models.EmotionBox{})

	if q.Status != "" && q.Status != "ALL" {
		query = query.Where("status = ?", q.Status)
	}
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.IsFeatured != nil {
		query = query.Where("is_featured = ?", *q.IsFeatured)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
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

	var boxes []models.EmotionBox
	err := query.Preload("User").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&boxes).Error
	if err != nil {
		return nil, 0, err
	}

	return s.toPayloads(boxes), total, nil
}

func (s *BoxService) activeReplyCount(boxID uuid.UUID) int64 {
	var count int64
	s.db.Model(&models.Reply{}).
		Where("box_id = ? AND status = ?", boxID, models.ReplyStatusActive).
		Count(&count)
	return count
}

func (s *BoxService) toPayloads(boxes []models.EmotionBox) []dto.BoxPayload {
	payloads := make([]dto.BoxPayload, len(boxes))
	for i := range boxes {
		payloads[i] = dto.NewBoxPayload(&boxes[i], s.activeReplyCount(boxes[i].ID))
	}
	return payloads
}
