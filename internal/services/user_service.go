package services

import (
	"fmt"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService covers the profile-content listings and the admin user
// console. Account deletion is the single hard delete in the system and
// cascades through everything the user owns.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// The content listings are visible to the owner and to admins only.
func selfOrAdmin(targetID, callerID uuid.UUID, callerRole string) error {
	if targetID != callerID && models.NormalizeRole(callerRole) != models.RoleAdmin {
		return fmt.Errorf("%w: 无权查看该用户的内容", ErrForbidden)
	}
	return nil
}

// Boxes lists a user's boxes, deleted ones excluded.
func (s *UserService) Boxes(targetID, callerID uuid.UUID, callerRole string, page, limit int) ([]models.EmotionBox, int64, error) {
	if err := selfOrAdmin(targetID, callerID, callerRole); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.EmotionBox{}).
		Where("user_id = ? AND status <> ?", targetID, models.BoxStatusDeleted)

	var total int64
	query.Count(&total)

	var boxes []models.EmotionBox
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&boxes).Error
	return boxes, total, err
}

// Replies lists a user's active replies with the box they belong to.
func (s *UserService) Replies(targetID, callerID uuid.UUID, callerRole string, page, limit int) ([]models.Reply, int64, error) {
	if err := selfOrAdmin(targetID, callerID, callerRole); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Reply{}).
		Where("user_id = ? AND status = ?", targetID, models.ReplyStatusActive)

	var total int64
	query.Count(&total)

	var replies []models.Reply
	err := query.Preload("Box").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&replies).Error
	return replies, total, err
}

// Likes lists the likes a user has given, with the liked reply.
func (s *UserService) Likes(targetID, callerID uuid.UUID, callerRole string, page, limit int) ([]models.Like, int64, error) {
	if err := selfOrAdmin(targetID, callerID, callerRole); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Like{}).Where("user_id = ?", targetID)

	var total int64
	query.Count(&total)

	var likes []models.Like
	err := query.Preload("Reply").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&likes).Error
	return likes, total, err
}

// AdminListUsersQuery carries the admin user-list filters.
type AdminListUsersQuery struct {
	Page     int
	Limit    int
	Keyword  string
	Role     string
	IsActive *bool
}

func (s *UserService) AdminList(q *AdminListUsersQuery) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		query = query.Where("username LIKE ? OR phone LIKE ? OR student_id LIKE ?", like, like, like)
	}
	if q.Role != "" {
		query = query.Where("role = ?", models.NormalizeRole(q.Role))
	}
	if q.IsActive != nil {
		query = query.Where("is_active = ?", *q.IsActive)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	err := query.Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&users).Error
	return users, total, err
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	user.Role = models.NormalizeRole(user.Role)
	return &user, nil
}

// SetStatus freezes or unfreezes an account.
func (s *UserService) SetStatus(userID uuid.UUID, active bool) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	return nil
}

func (s *UserService) SetRole(userID uuid.UUID, role string) error {
	normalized := models.NormalizeRole(role)
	result := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", normalized)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	return nil
}

// Delete removes the account and everything hanging off it: likes given
// and received, replies written and received, views, boxes, refresh
// tokens. One transaction, so a failure leaves the account intact.
func (s *UserService) Delete(targetID, callerID uuid.UUID, callerRole string) error {
	if targetID != callerID && models.NormalizeRole(callerRole) != models.RoleAdmin {
		return fmt.Errorf("%w: 无权删除该用户", ErrForbidden)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", targetID).Error; err != nil {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ownedBoxes := tx.Model(&models.EmotionBox{}).Select("id").Where("user_id = ?", targetID)
		repliesOnOwned := tx.Model(&models.Reply{}).Select("id").Where("box_id IN (?)", ownedBoxes)

		// Likes on replies under the user's boxes, then the replies and
		// views under those boxes, then the boxes themselves.
		if err := tx.Where("reply_id IN (?)", repliesOnOwned).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("box_id IN (?)", ownedBoxes).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("box_id IN (?)", ownedBoxes).Delete(&models.BoxView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.EmotionBox{}).Error; err != nil {
			return err
		}

		// The user's own engagement elsewhere.
		ownReplies := tx.Model(&models.Reply{}).Select("id").Where("user_id = ?", targetID)
		if err := tx.Where("reply_id IN (?)", ownReplies).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.BoxView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}
