package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/emotionbox/emotionbox-server/internal/config"
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

const bcryptCost = 12

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	settings *SettingService
	codes    *CodeStore
}

func NewAuthService(db *gorm.DB, cfg *config.Config, settings *SettingService, codes *CodeStore) *AuthService {
	return &AuthService{db: db, cfg: cfg, settings: settings, codes: codes}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !s.settings.GetBool(KeyAllowRegister, true) {
		return nil, fmt.Errorf("%w: 当前未开放注册", ErrValidation)
	}
	if req.Username == "" {
		return nil, fmt.Errorf("%w: 用户名不能为空", ErrValidation)
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, fmt.Errorf("%w: 手机号格式不正确", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: 密码至少需要 6 位", ErrValidation)
	}
	if s.settings.GetBool(KeyRequireStudentID, false) && req.StudentID == "" {
		return nil, fmt.Errorf("%w: 请填写学号", ErrValidation)
	}

	var existing models.User
	if err := s.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: 手机号已注册", ErrConflict)
	}
	if req.StudentID != "" {
		if err := s.db.Where("student_id = ?", req.StudentID).First(&existing).Error; err == nil {
			return nil, fmt.Errorf("%w: 学号已被使用", ErrConflict)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	anonymousName := req.AnonymousName
	if anonymousName == "" {
		anonymousName = GenerateAnonymousName()
	}

	user := models.User{
		Username:      req.Username,
		Phone:         req.Phone,
		School:        req.School,
		Grade:         req.Grade,
		Password:      string(hash),
		Role:          models.RoleUser,
		IsActive:      true,
		AnonymousName: anonymousName,
		IsAnonymous:   true,
	}
	if req.StudentID != "" {
		user.StudentID = &req.StudentID
	}
	if req.IsAnonymous != nil {
		user.IsAnonymous = *req.IsAnonymous
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: 手机号或学号已被使用", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(&user)
}

// Login accepts a phone number or a username as the identity.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	var err error
	if phonePattern.MatchString(req.Phone) {
		err = s.db.Where("phone = ?", req.Phone).First(&user).Error
	} else {
		err = s.db.Where("username = ?", req.Phone).First(&user).Error
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountFrozen
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

// Refresh rotates the refresh token: the presented token is revoked and
// a fresh pair is issued.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrAccountFrozen
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}
	user.Role = models.NormalizeRole(user.Role)
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}

	updates := map[string]any{}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.School != nil {
		updates["school"] = *req.School
	}
	if req.Grade != nil {
		updates["grade"] = *req.Grade
	}
	if req.AnonymousName != "" {
		updates["anonymous_name"] = req.AnonymousName
	}
	if req.IsAnonymous != nil {
		updates["is_anonymous"] = *req.IsAnonymous
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(userID uuid.UUID, current, newPassword string) error {
	if current == "" || newPassword == "" {
		return fmt.Errorf("%w: 请提供当前密码和新密码", ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: 新密码至少需要 6 位", ErrValidation)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.Model(&user).Update("password", string(hash)).Error
}

// ResetPassword sets a new password after verifying the one-time code.
func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("%w: 新密码至少需要 6 位", ErrValidation)
	}
	if !s.codes.Verify(req.Phone, CodeTypeResetPassword, req.VerificationCode) {
		return fmt.Errorf("%w: 验证码无效或已过期", ErrValidation)
	}

	var user models.User
	if err := s.db.Where("phone = ?", req.Phone).First(&user).Error; err != nil {
		return fmt.Errorf("%w: 用户不存在", ErrNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.Model(&user).Update("password", string(hash)).Error
}

func (s *AuthService) SendVerificationCode(phone, codeType string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: 手机号格式不正确", ErrValidation)
	}
	if !ValidCodeType(codeType) {
		return fmt.Errorf("%w: 验证码类型无效", ErrValidation)
	}

	_, err := s.codes.Issue(phone, codeType)
	return err
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	user.Role = models.NormalizeRole(user.Role)
	return &dto.AuthResponse{
		User: user,
		Tokens: dto.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": models.NormalizeRole(user.Role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
