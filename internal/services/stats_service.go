package services

import (
	"time"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"gorm.io/gorm"
)

// StatsService is the read-mostly admin dashboard: headline totals,
// violation counts, and a per-day series of independent range counts.
// N small counts instead of one grouped aggregate is fine at this scale.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *StatsService) Stats(days int) (*dto.StatsResponse, error) {
	if days < 1 {
		days = 7
	}
	windowStart := startOfDay(time.Now().AddDate(0, 0, -(days - 1)))

	var resp dto.StatsResponse

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&resp.Overview.TotalUsers, s.db.Model(&models.User{}).Where("is_active = ?", true)},
		{&resp.Overview.TotalBoxes, s.db.Model(&models.EmotionBox{}).Where("status = ?", models.BoxStatusActive)},
		{&resp.Overview.TotalReplies, s.db.Model(&models.Reply{}).Where("status = ?", models.ReplyStatusActive)},
		{&resp.Overview.TotalLikes, s.db.Model(&models.Like{})},
		{&resp.Overview.NewUsers, s.db.Model(&models.User{}).Where("is_active = ? AND created_at >= ?", true, windowStart)},
		{&resp.Overview.NewBoxes, s.db.Model(&models.EmotionBox{}).Where("status = ? AND created_at >= ?", models.BoxStatusActive, windowStart)},
		{&resp.Overview.NewReplies, s.db.Model(&models.Reply{}).Where("status = ? AND created_at >= ?", models.ReplyStatusActive, windowStart)},
		{&resp.Overview.NewLikes, s.db.Model(&models.Like{}).Where("created_at >= ?", windowStart)},
		{&resp.Violations.InactiveUsers, s.db.Model(&models.User{}).Where("is_active = ?", false)},
		{&resp.Violations.ArchivedBoxes, s.db.Model(&models.EmotionBox{}).Where("status = ?", models.BoxStatusArchived)},
		{&resp.Violations.DeletedReplies, s.db.Model(&models.Reply{}).Where("status = ?", models.ReplyStatusDeleted)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	resp.DailyStats = make([]dto.DailyStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		dayStart := startOfDay(time.Now().AddDate(0, 0, -i))
		dayEnd := dayStart.AddDate(0, 0, 1)

		stat := dto.DailyStat{Date: dayStart.Format("2006-01-02")}
		dayCounts := []struct {
			dest  *int64
			model any
		}{
			{&stat.Users, &models.User{}},
			{&stat.Boxes, &models.EmotionBox{}},
			{&stat.Replies, &models.Reply{}},
			{&stat.Likes, &models.Like{}},
		}
		for _, c := range dayCounts {
			if err := s.db.Model(c.model).
				Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
				Count(c.dest).Error; err != nil {
				return nil, err
			}
		}
		resp.DailyStats = append(resp.DailyStats, stat)
	}

	return &resp, nil
}

// PopularBoxes lists the most viewed active boxes of the window.
func (s *StatsService) PopularBoxes(limit, days int) ([]dto.BoxPayload, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	windowStart := time.Now().AddDate(0, 0, -days)

	var boxes []models.EmotionBox
	err := s.db.Preload("User").
		Where("status = ? AND created_at >= ?", models.BoxStatusActive, windowStart).
		Order("view_count DESC").
		Limit(limit).
		Find(&boxes).Error
	if err != nil {
		return nil, err
	}

	payloads := make([]dto.BoxPayload, len(boxes))
	for i := range boxes {
		var replyCount int64
		s.db.Model(&models.Reply{}).
			Where("box_id = ? AND status = ?", boxes[i].ID, models.ReplyStatusActive).
			Count(&replyCount)
		payloads[i] = dto.NewBoxPayload(&boxes[i], replyCount)
	}
	return payloads, nil
}

// ActiveUsers ranks the top box authors and the top repliers of the window.
func (s *StatsService) ActiveUsers(limit, days int) (boxUsers, replyUsers []dto.ActiveUser, err error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	windowStart := time.Now().AddDate(0, 0, -days)

	err = s.db.Model(&models.User{}).
		Select("users.id, users.username, users.anonymous_name, COUNT(emotion_boxes.id) AS count").
		Joins("JOIN emotion_boxes ON emotion_boxes.user_id = users.id AND emotion_boxes.created_at >= ?", windowStart).
		Where("users.is_active = ?", true).
		Group("users.id, users.username, users.anonymous_name").
		Order("count DESC").
		Limit(limit).
		Scan(&boxUsers).Error
	if err != nil {
		return nil, nil, err
	}

	err = s.db.Model(&models.User{}).
		Select("users.id, users.username, users.anonymous_name, COUNT(replies.id) AS count").
		Joins("JOIN replies ON replies.user_id = users.id AND replies.created_at >= ?", windowStart).
		Where("users.is_active = ?", true).
		Group("users.id, users.username, users.anonymous_name").
		Order("count DESC").
		Limit(limit).
		Scan(&replyUsers).Error
	if err != nil {
		return nil, nil, err
	}

	return boxUsers, replyUsers, nil
}
