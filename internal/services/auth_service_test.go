package services

import (
	"testing"
	"time"

	"github.com/emotionbox/emotionbox-server/internal/config"
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (*AuthService, *SettingService, *CodeStore) {
	db := newTestDB(t)
	settings := NewSettingService(db)
	require.NoError(t, settings.Seed())
	codes := NewCodeStore()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	return NewAuthService(db, cfg, settings, codes), settings, codes
}

func registerTestUser(t *testing.T, svc *AuthService, username, phone string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(&dto.RegisterRequest{
		Username: username,
		Phone:    phone,
		Password: "secret123",
	})
	require.NoError(t, err)
	return resp
}

func TestAuth_Register(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	resp := registerTestUser(t, svc, "小明", "13812345678")
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.User.AnonymousName)
	assert.True(t, resp.User.IsActive)
}

func TestAuth_Register_Validation(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{Phone: "13812345678", Password: "secret123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(&dto.RegisterRequest{Username: "小明", Phone: "12345", Password: "secret123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(&dto.RegisterRequest{Username: "小明", Phone: "13812345678", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuth_Register_DuplicatePhone(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	registerTestUser(t, svc, "小明", "13812345678")

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "小红",
		Phone:    "13812345678",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuth_Register_Closed(t *testing.T) {
	svc, settings, _ := setupAuthService(t)
	require.NoError(t, settings.Set(KeyAllowRegister, false))

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "小明",
		Phone:    "13812345678",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuth_Login(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	registerTestUser(t, svc, "小明", "13812345678")

	// By phone.
	resp, err := svc.Login(&dto.LoginRequest{Phone: "13812345678", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "小明", resp.User.Username)

	// By username.
	resp, err = svc.Login(&dto.LoginRequest{Phone: "小明", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "13812345678", resp.User.Phone)

	_, err = svc.Login(&dto.LoginRequest{Phone: "13812345678", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Phone: "13899999999", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_Login_FrozenAccount(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	resp := registerTestUser(t, svc, "小明", "13812345678")

	require.NoError(t, svc.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("is_active", false).Error)

	_, err := svc.Login(&dto.LoginRequest{Phone: "13812345678", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountFrozen)
}

func TestAuth_RefreshRotation(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	resp := registerTestUser(t, svc, "小明", "13812345678")

	rotated, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	// The presented token was revoked by the rotation.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The new one still works.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: rotated.Tokens.RefreshToken})
	require.NoError(t, err)
}

func TestAuth_Logout(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	resp := registerTestUser(t, svc, "小明", "13812345678")

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: resp.Tokens.RefreshToken}))

	_, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_ChangePassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	resp := registerTestUser(t, svc, "小明", "13812345678")

	err := svc.ChangePassword(resp.User.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(resp.User.ID, "secret123", "newsecret"))

	_, err = svc.Login(&dto.LoginRequest{Phone: "13812345678", Password: "newsecret"})
	require.NoError(t, err)
}

func TestAuth_ResetPasswordWithCode(t *testing.T) {
	svc, _, codes := setupAuthService(t)
	registerTestUser(t, svc, "小明", "13812345678")

	code, err := codes.Issue("13812345678", CodeTypeResetPassword)
	require.NoError(t, err)

	err = svc.ResetPassword(&dto.ResetPasswordRequest{
		Phone:            "13812345678",
		NewPassword:      "resetpass",
		VerificationCode: "000000",
	})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.ResetPassword(&dto.ResetPasswordRequest{
		Phone:            "13812345678",
		NewPassword:      "resetpass",
		VerificationCode: code,
	}))

	_, err = svc.Login(&dto.LoginRequest{Phone: "13812345678", Password: "resetpass"})
	require.NoError(t, err)
}
