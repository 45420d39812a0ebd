package services

import (
	"testing"

	"github.com/emotionbox/emotionbox-server/internal/database"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database pinned to a single
// connection so it lives for the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, phone string) *models.User {
	t.Helper()

	user := models.User{
		Username:      username,
		Phone:         phone,
		Password:      "not-a-real-hash",
		Role:          models.RoleUser,
		IsActive:      true,
		AnonymousName: "神秘的测试者1",
		IsAnonymous:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestBox(t *testing.T, db *gorm.DB, user *models.User, content string) *models.EmotionBox {
	t.Helper()

	box := models.EmotionBox{
		UserID:     user.ID,
		Content:    content,
		IsPublic:   true,
		AllowReply: true,
		Status:     models.BoxStatusActive,
	}
	require.NoError(t, db.Create(&box).Error)
	return &box
}
