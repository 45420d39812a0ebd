package services

import (
	"testing"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeration_CheckContent(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)

	_, err := moderation.AddWord("傻逼", models.WordLevelBlock)
	require.NoError(t, err)
	_, err = moderation.AddWord("垃圾", models.WordLevelWarning)
	require.NoError(t, err)

	result := moderation.CheckContent("今天心情很好")
	assert.False(t, result.Blocked)
	assert.Empty(t, result.Warnings)

	result = moderation.CheckContent("你真是个傻逼")
	assert.True(t, result.Blocked)
	assert.Contains(t, result.Warnings, "内容包含敏感词: 傻逼")

	result = moderation.CheckContent("这个课程太垃圾了")
	assert.False(t, result.Blocked)
	assert.Contains(t, result.Warnings, "内容可能包含不当词汇: 垃圾")
}

func TestModeration_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)

	_, err := moderation.AddWord("badword", models.WordLevelBlock)
	require.NoError(t, err)

	result := moderation.CheckContent("this has a BadWord inside")
	assert.True(t, result.Blocked)
}

func TestModeration_CacheInvalidation(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)

	// Warm the cache with an empty word list.
	result := moderation.CheckContent("随便说点什么")
	assert.False(t, result.Blocked)

	word, err := moderation.AddWord("敏感词", models.WordLevelBlock)
	require.NoError(t, err)

	// AddWord invalidated the cache, so the new word takes effect.
	result = moderation.CheckContent("这里有个敏感词")
	assert.True(t, result.Blocked)

	require.NoError(t, moderation.DeleteWord(word.ID))
	result = moderation.CheckContent("这里有个敏感词")
	assert.False(t, result.Blocked)
}

func TestModeration_AddWord_Validation(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)

	_, err := moderation.AddWord("", models.WordLevelBlock)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = moderation.AddWord("word", "SEVERE")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = moderation.AddWord("重复词", models.WordLevelBlock)
	require.NoError(t, err)
	_, err = moderation.AddWord("重复词", models.WordLevelWarning)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestModeration_UpdateWord(t *testing.T) {
	db := newTestDB(t)
	moderation := NewModerationService(db)

	word, err := moderation.AddWord("旧词", models.WordLevelWarning)
	require.NoError(t, err)

	_, err = moderation.UpdateWord(word.ID, "新词", models.WordLevelBlock)
	require.NoError(t, err)

	result := moderation.CheckContent("内容里有新词出现")
	assert.True(t, result.Blocked)
	result = moderation.CheckContent("内容里有旧词出现")
	assert.False(t, result.Blocked)
}
