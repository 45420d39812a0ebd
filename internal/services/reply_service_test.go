package services

import (
	"testing"
	"time"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReplyService(t *testing.T) (*ReplyService, *SettingService, *gorm.DB, *models.User, *models.EmotionBox) {
	db := newTestDB(t)
	settings := NewSettingService(db)
	require.NoError(t, settings.Seed())
	moderation := NewModerationService(db)
	svc := NewReplyService(db, moderation, settings)

	author := createTestUser(t, db, "author", "13800000001")
	replier := createTestUser(t, db, "replier", "13800000002")
	box := createTestBox(t, db, author, "最近总是焦虑，不知道该怎么调节自己")
	return svc, settings, db, replier, box
}

func TestReply_Create(t *testing.T) {
	svc, _, _, replier, box := setupReplyService(t)

	_, err := svc.Create(replier.ID, box.ID, "加油")
	assert.ErrorIs(t, err, ErrValidation)

	reply, err := svc.Create(replier.ID, box.ID, "抱抱你，焦虑的时候试试出去走走，会好一些的")
	require.NoError(t, err)
	assert.Equal(t, models.ReplyStatusActive, reply.Status)
	assert.Equal(t, replier.AnonymousName, reply.Author.AnonymousName)
}

func TestReply_Create_OncePerBox(t *testing.T) {
	svc, _, _, replier, box := setupReplyService(t)

	first, err := svc.Create(replier.ID, box.ID, "每个人都会有低谷期的，会慢慢好起来的")
	require.NoError(t, err)

	_, err = svc.Create(replier.ID, box.ID, "想再补充一句，但规则不允许第二条回复")
	assert.ErrorIs(t, err, ErrConflict)

	// Deleting the active reply frees the slot.
	require.NoError(t, svc.Delete(first.ID, replier.ID, models.RoleUser))
	_, err = svc.Create(replier.ID, box.ID, "删掉之前那条之后，这条新回复可以发出去")
	require.NoError(t, err)
}

func TestReply_Create_RespectsAllowReply(t *testing.T) {
	svc, _, db, replier, box := setupReplyService(t)

	require.NoError(t, db.Model(box).Update("allow_reply", false).Error)

	_, err := svc.Create(replier.ID, box.ID, "这条回复应该被关闭回复的开关拦下来")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReply_ToggleLike(t *testing.T) {
	svc, _, db, replier, box := setupReplyService(t)

	reply, err := svc.Create(replier.ID, box.ID, "你已经很努力了，不要太苛责自己")
	require.NoError(t, err)

	liker := createTestUser(t, db, "liker", "13800000003")

	liked, err := svc.ToggleLike(reply.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.ToggleLike(reply.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	liked, err = svc.ToggleLike(reply.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	// like_count tracks the toggles exactly.
	var stored models.Reply
	require.NoError(t, db.First(&stored, "id = ?", reply.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)

	status, err := svc.LikeStatus(reply.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, status)
}

func TestReply_ToggleLike_RacingDuplicate(t *testing.T) {
	svc, _, db, replier, box := setupReplyService(t)

	reply, err := svc.Create(replier.ID, box.ID, "两个请求同时点赞，也只能算一个赞")
	require.NoError(t, err)

	liker := createTestUser(t, db, "liker", "13800000003")

	// Sneak a competing like in between ToggleLike's existence check and
	// its insert, so the unique index rejects the insert.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:race_like", func(tx *gorm.DB) {
		like, ok := tx.Statement.Dest.(*models.Like)
		if !ok || raced {
			return
		}
		raced = true
		tx.Exec("INSERT INTO likes (id, reply_id, user_id, created_at) VALUES (?, ?, ?, ?)",
			uuid.New(), like.ReplyID, like.UserID, time.Now())
	}))
	defer func() {
		require.NoError(t, db.Callback().Create().Remove("test:race_like"))
	}()

	liked, err := svc.ToggleLike(reply.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, raced)
}

func TestReply_AutoFeature(t *testing.T) {
	svc, settings, db, replier, box := setupReplyService(t)
	require.NoError(t, settings.Set(KeyAutoFeaturedThreshold, 2))

	reply, err := svc.Create(replier.ID, box.ID, "一切都会过去的，给你一个大大的拥抱")
	require.NoError(t, err)

	first := createTestUser(t, db, "liker1", "13800000003")
	second := createTestUser(t, db, "liker2", "13800000004")

	_, err = svc.ToggleLike(reply.ID, first.ID)
	require.NoError(t, err)

	var stored models.EmotionBox
	require.NoError(t, db.First(&stored, "id = ?", box.ID).Error)
	assert.False(t, stored.IsFeatured)

	_, err = svc.ToggleLike(reply.ID, second.ID)
	require.NoError(t, err)

	require.NoError(t, db.First(&stored, "id = ?", box.ID).Error)
	assert.True(t, stored.IsFeatured)
}

func TestReply_Delete_Permissions(t *testing.T) {
	svc, _, db, replier, box := setupReplyService(t)

	reply, err := svc.Create(replier.ID, box.ID, "这条回复会先被别人尝试删除，然后被本人删除")
	require.NoError(t, err)

	stranger := createTestUser(t, db, "stranger", "13800000005")
	err = svc.Delete(reply.ID, stranger.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	// Admins can always remove a reply.
	require.NoError(t, svc.Delete(reply.ID, stranger.ID, models.RoleAdmin))
}

func TestReply_Like_RequiresActiveReply(t *testing.T) {
	svc, _, db, replier, box := setupReplyService(t)

	reply, err := svc.Create(replier.ID, box.ID, "马上就会被删除的一条回复，不能再被点赞")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(reply.ID, replier.ID, models.RoleUser))

	liker := createTestUser(t, db, "liker", "13800000003")
	_, err = svc.ToggleLike(reply.ID, liker.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
