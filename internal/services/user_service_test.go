package services

import (
	"testing"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_OwnContentListings(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createTestUser(t, db, "author", "13800000001")
	active := createTestBox(t, db, user, "留在列表里的盲盒，状态正常")
	deleted := createTestBox(t, db, user, "被删除的盲盒，不应出现在列表里")
	require.NoError(t, db.Model(deleted).Update("status", models.BoxStatusDeleted).Error)

	boxes, total, err := svc.Boxes(user.ID, user.ID, models.RoleUser, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, boxes, 1)
	assert.Equal(t, active.ID, boxes[0].ID)
}

func TestUser_ContentListings_SelfOrAdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	author := createTestUser(t, db, "author", "13800000001")
	stranger := createTestUser(t, db, "stranger", "13800000002")
	admin := createTestUser(t, db, "admin", "13800000003")

	box := createTestBox(t, db, author, "只有本人和管理员能看到的盲盒")
	reply := models.Reply{BoxID: box.ID, UserID: author.ID, Content: "只有本人和管理员能看到的回复", Status: models.ReplyStatusActive}
	require.NoError(t, db.Create(&reply).Error)
	require.NoError(t, db.Create(&models.Like{ReplyID: reply.ID, UserID: author.ID}).Error)

	_, _, err := svc.Boxes(author.ID, stranger.ID, models.RoleUser, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.Replies(author.ID, stranger.ID, models.RoleUser, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.Likes(author.ID, stranger.ID, models.RoleUser, 1, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	boxes, total, err := svc.Boxes(author.ID, admin.ID, models.RoleAdmin, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, boxes, 1)

	replies, _, err := svc.Replies(author.ID, admin.ID, models.RoleAdmin, 1, 10)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, box.ID, replies[0].BoxID)

	likes, _, err := svc.Likes(author.ID, admin.ID, models.RoleAdmin, 1, 10)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, reply.ID, likes[0].ReplyID)
}

func TestUser_AdminListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	createTestUser(t, db, "张三", "13800000001")
	frozen := createTestUser(t, db, "李四", "13800000002")
	require.NoError(t, db.Model(frozen).Update("is_active", false).Error)

	inactive := false
	users, total, err := svc.AdminList(&AdminListUsersQuery{Page: 1, Limit: 10, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "李四", users[0].Username)

	users, _, err = svc.AdminList(&AdminListUsersQuery{Page: 1, Limit: 10, Keyword: "1380000000"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUser_SetStatusAndRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createTestUser(t, db, "张三", "13800000001")

	require.NoError(t, svc.SetStatus(user.ID, false))
	got, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.SetRole(user.ID, "admin"))
	got, err = svc.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestUser_Delete_Cascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	target := createTestUser(t, db, "target", "13800000001")
	other := createTestUser(t, db, "other", "13800000002")

	// Target owns a box; the other user viewed and replied to it.
	box := createTestBox(t, db, target, "注销账号后这个盲盒应该彻底消失")
	require.NoError(t, db.Create(&models.BoxView{BoxID: box.ID, UserID: other.ID}).Error)
	reply := models.Reply{BoxID: box.ID, UserID: other.ID, Content: "别人留下的回复", Status: models.ReplyStatusActive}
	require.NoError(t, db.Create(&reply).Error)
	require.NoError(t, db.Create(&models.Like{ReplyID: reply.ID, UserID: target.ID}).Error)

	// Target also replied under the other user's box.
	otherBox := createTestBox(t, db, other, "别人的盲盒在注销后应该保持原样")
	targetReply := models.Reply{BoxID: otherBox.ID, UserID: target.ID, Content: "注销者留下的回复", Status: models.ReplyStatusActive}
	require.NoError(t, db.Create(&targetReply).Error)

	require.NoError(t, svc.Delete(target.ID, target.ID, models.RoleUser))

	var count int64
	db.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.EmotionBox{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Reply{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Like{}).Where("user_id = ?", target.ID).Count(&count)
	assert.Zero(t, count)

	// The orphaned reply and its like are gone with the box.
	db.Model(&models.Reply{}).Where("box_id = ?", box.ID).Count(&count)
	assert.Zero(t, count)

	// The other user's own box survived.
	var survivor models.EmotionBox
	require.NoError(t, db.First(&survivor, "id = ?", otherBox.ID).Error)
}

func TestUser_Delete_Permissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	target := createTestUser(t, db, "target", "13800000001")
	stranger := createTestUser(t, db, "stranger", "13800000002")

	err := svc.Delete(target.ID, stranger.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(target.ID, stranger.ID, models.RoleAdmin))
}
