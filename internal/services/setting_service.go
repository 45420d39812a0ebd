package services

import (
	"fmt"
	"strconv"

	"github.com/emotionbox/emotionbox-server/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys written by the admin console and read by the services
// that enforce them.
const (
	KeySiteName              = "siteName"
	KeySiteDescription       = "siteDescription"
	KeyAllowRegister         = "allowRegister"
	KeyRequireStudentID      = "requireStudentId"
	KeyDailyBoxLimit         = "dailyBoxLimit"
	KeyMaxImagesPerBox       = "maxImagesPerBox"
	KeyMaxImageSize          = "maxImageSize"
	KeyAutoFeaturedThreshold = "autoFeaturedThreshold"
	KeyAllowAnonymousView    = "allowAnonymousView"
	KeyAllowBoxDelete        = "allowBoxDelete"
	KeyUserAgreement         = "userAgreement"
	KeyViolationRules        = "violationRules"
	KeyMaintenanceMode       = "maintenanceMode"
	KeyMaintenanceMessage    = "maintenanceMessage"
)

type settingDefault struct {
	Value       string
	Description string
}

var settingDefaults = map[string]settingDefault{
	KeySiteName:              {"情绪盲盒", "站点名称"},
	KeySiteDescription:       {"大学生匿名情绪互助平台", "站点描述"},
	KeyAllowRegister:         {"true", "是否开放注册"},
	KeyRequireStudentID:      {"false", "注册是否必须填写学号"},
	KeyDailyBoxLimit:         {"3", "每人每日可发布盲盒数量"},
	KeyMaxImagesPerBox:       {"3", "单个盲盒最多图片数量"},
	KeyMaxImageSize:          {"5242880", "单张图片大小上限（字节）"},
	KeyAutoFeaturedThreshold: {"5", "回复点赞总数达到该值自动设为精选"},
	KeyAllowAnonymousView:    {"false", "是否允许未登录浏览"},
	KeyAllowBoxDelete:        {"true", "是否允许用户删除自己的盲盒"},
	KeyUserAgreement:         {"", "用户协议文本"},
	KeyViolationRules:        {"", "违规处理规则文本"},
	KeyMaintenanceMode:       {"false", "维护模式开关"},
	KeyMaintenanceMessage:    {"系统维护中，请稍后再试", "维护模式提示语"},
}

// SettingService reads and writes the system_settings table. Values are
// stored as strings; callers use the typed getters, which fall back to
// the provided default when the key is absent or malformed.
type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// Seed inserts any missing default settings. Existing values are kept.
func (s *SettingService) Seed() error {
	for key, def := range settingDefaults {
		setting := models.SystemSetting{
			SettingKey:   key,
			SettingValue: def.Value,
			Description:  def.Description,
		}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoNothing: true,
		}).Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingService) All() ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	err := s.db.Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

func (s *SettingService) Get(key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := s.db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, fmt.Errorf("%w: 设置不存在", ErrNotFound)
	}
	return &setting, nil
}

func (s *SettingService) GetString(key, fallback string) string {
	setting, err := s.Get(key)
	if err != nil {
		return fallback
	}
	return setting.SettingValue
}

func (s *SettingService) GetInt(key string, fallback int) int {
	setting, err := s.Get(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(setting.SettingValue)
	if err != nil {
		return fallback
	}
	return n
}

func (s *SettingService) GetBool(key string, fallback bool) bool {
	setting, err := s.Get(key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(setting.SettingValue)
	if err != nil {
		return fallback
	}
	return b
}

// Set upserts a single whitelisted key.
func (s *SettingService) Set(key string, value any) error {
	def, ok := settingDefaults[key]
	if !ok {
		return fmt.Errorf("%w: 未知的设置项 %s", ErrValidation, key)
	}

	setting := models.SystemSetting{
		SettingKey:   key,
		SettingValue: fmt.Sprint(value),
		Description:  def.Description,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&setting).Error
}

// Update applies a batch of settings, silently skipping unknown keys
// the way the admin console expects.
func (s *SettingService) Update(values map[string]any) error {
	for key, value := range values {
		if _, ok := settingDefaults[key]; !ok {
			continue
		}
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores every setting to its default value.
func (s *SettingService) Reset() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for key, def := range settingDefaults {
			setting := models.SystemSetting{
				SettingKey:   key,
				SettingValue: def.Value,
				Description:  def.Description,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "description", "updated_at"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
