package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckResult is the outcome of a moderation scan.
type CheckResult struct {
	Blocked  bool     `json:"blocked"`
	Warnings []string `json:"warnings"`
}

type wordPattern struct {
	word  string
	level string
	re    *regexp.Regexp
}

// ModerationService scans text against the admin-managed sensitive-word
// table. Patterns are compiled once and cached; any word mutation
// invalidates the cache. The scan is a plain case-insensitive substring
// match with no boundaries, since Chinese words have none.
type ModerationService struct {
	db       *gorm.DB
	mu       sync.RWMutex
	patterns []wordPattern
	loaded   bool
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

func (s *ModerationService) load() []wordPattern {
	s.mu.RLock()
	if s.loaded {
		patterns := s.patterns
		s.mu.RUnlock()
		return patterns
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.patterns
	}

	var words []models.SensitiveWord
	if err := s.db.Find(&words).Error; err != nil {
		// A broken word list must not take posting down with it; the
		// original lets content through on lookup failure.
		slog.Error("failed to load sensitive words", "error", err)
		return nil
	}

	patterns := make([]wordPattern, 0, len(words))
	for _, w := range words {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(w.Word))
		if err != nil {
			slog.Error("failed to compile sensitive word", "word", w.Word, "error", err)
			continue
		}
		patterns = append(patterns, wordPattern{word: w.Word, level: w.Level, re: re})
	}

	s.patterns = patterns
	s.loaded = true
	return patterns
}

// Invalidate drops the compiled cache; the next check reloads the table.
func (s *ModerationService) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.patterns = nil
	s.mu.Unlock()
}

// CheckContent scans text and reports whether it must be rejected.
// BLOCK-level matches set Blocked; WARNING-level matches only warn.
func (s *ModerationService) CheckContent(text string) CheckResult {
	result := CheckResult{Warnings: []string{}}
	if text == "" {
		return result
	}

	for _, p := range s.load() {
		if !p.re.MatchString(text) {
			continue
		}
		switch p.level {
		case models.WordLevelBlock:
			result.Blocked = true
			result.Warnings = append(result.Warnings, "内容包含敏感词: "+p.word)
		case models.WordLevelWarning:
			result.Warnings = append(result.Warnings, "内容可能包含不当词汇: "+p.word)
		}
	}
	return result
}

// --- admin word management ---

func (s *ModerationService) ListWords(level string, page, limit int) ([]models.SensitiveWord, int64, error) {
	var words []models.SensitiveWord
	var total int64

	query := s.db.Model(&models.SensitiveWord{})
	if level != "" {
		query = query.Where("level = ?", level)
	}
	query.Count(&total)

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&words).Error
	return words, total, err
}

func (s *ModerationService) AddWord(word, level string) (*models.SensitiveWord, error) {
	if word == "" {
		return nil, fmt.Errorf("%w: 敏感词不能为空", ErrValidation)
	}
	if level != models.WordLevelWarning && level != models.WordLevelBlock {
		return nil, fmt.Errorf("%w: 级别必须是 WARNING 或 BLOCK", ErrValidation)
	}

	entry := models.SensitiveWord{Word: word, Level: level}
	if err := s.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 敏感词已存在", ErrConflict)
		}
		return nil, err
	}

	s.Invalidate()
	return &entry, nil
}

func (s *ModerationService) UpdateWord(id uuid.UUID, word, level string) (*models.SensitiveWord, error) {
	if word == "" {
		return nil, fmt.Errorf("%w: 敏感词不能为空", ErrValidation)
	}
	if level != models.WordLevelWarning && level != models.WordLevelBlock {
		return nil, fmt.Errorf("%w: 级别必须是 WARNING 或 BLOCK", ErrValidation)
	}

	var entry models.SensitiveWord
	if err := s.db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("%w: 敏感词不存在", ErrNotFound)
	}

	if word != entry.Word {
		var dup models.SensitiveWord
		if err := s.db.Where("word = ? AND id <> ?", word, id).First(&dup).Error; err == nil {
			return nil, fmt.Errorf("%w: 敏感词已存在", ErrConflict)
		}
	}

	if err := s.db.Model(&entry).Updates(map[string]any{
		"word":  word,
		"level": level,
	}).Error; err != nil {
		return nil, err
	}

	s.Invalidate()
	return &entry, nil
}

func (s *ModerationService) DeleteWord(id uuid.UUID) error {
	result := s.db.Delete(&models.SensitiveWord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: 敏感词不存在", ErrNotFound)
	}

	s.Invalidate()
	return nil
}
