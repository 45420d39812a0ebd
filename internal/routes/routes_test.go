package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emotionbox/emotionbox-server/internal/config"
	"github.com/emotionbox/emotionbox-server/internal/database"
	"github.com/emotionbox/emotionbox-server/internal/handlers"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
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
	database.DB = db

	cfg := &config.Config{
		JWTSecret:        "routes-test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		UploadDir:        t.TempDir(),
		MaxFileSize:      5 * 1024 * 1024,
	}

	settingService := services.NewSettingService(db)
	require.NoError(t, settingService.Seed())
	moderationService := services.NewModerationService(db)
	codeStore := services.NewCodeStore()
	authService := services.NewAuthService(db, cfg, settingService, codeStore)
	boxService := services.NewBoxService(db, moderationService, settingService)
	replyService := services.NewReplyService(db, moderationService, settingService)
	userService := services.NewUserService(db)
	statsService := services.NewStatsService(db)

	app := fiber.New()
	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewBoxHandler(boxService),
		handlers.NewReplyHandler(replyService),
		handlers.NewUserHandler(userService),
		handlers.NewUploadHandler(cfg),
		handlers.NewAdminHandler(userService, boxService, replyService, moderationService, settingService, statsService),
		handlers.NewHealthHandler(),
	)
	return app, db, cfg
}

func createRouteUser(t *testing.T, db *gorm.DB, username, phone, role string) *models.User {
	t.Helper()

	user := models.User{
		Username:      username,
		Phone:         phone,
		Password:      "not-a-real-hash",
		Role:          role,
		IsActive:      true,
		AnonymousName: "神秘的测试者",
		IsAnonymous:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func signToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

func TestSetup_RouteSurface(t *testing.T) {
	app, db, cfg := setupApp(t)

	member := createRouteUser(t, db, "member", "13800000001", models.RoleUser)
	author := createRouteUser(t, db, "author", "13800000002", models.RoleUser)
	admin := createRouteUser(t, db, "admin", "13800000003", models.RoleAdmin)

	require.NoError(t, db.Create(&models.EmotionBox{
		UserID:     author.ID,
		Content:    "路由测试用的盲盒，等着被随机抽到",
		IsPublic:   true,
		AllowReply: true,
		Status:     models.BoxStatusActive,
	}).Error)

	memberToken := signToken(t, cfg, member)
	adminToken := signToken(t, cfg, admin)

	do := func(method, path, token string) *http.Response {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	// Public auth route is reachable without a token; the empty body
	// fails validation, not routing.
	resp := do("POST", "/api/auth/send-verification-code", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do("GET", "/api/boxes/random/one", memberToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do("GET", "/api/replies/"+uuid.NewString()+"/like-status", memberToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do("POST", "/api/upload/single", memberToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Per-user content: "me" alias works, strangers are rejected,
	// admins can inspect anyone.
	resp = do("GET", "/api/users/me/boxes", memberToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do("GET", "/api/users/"+author.ID.String()+"/boxes", memberToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = do("GET", "/api/users/"+author.ID.String()+"/boxes", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do("GET", "/api/users/"+author.ID.String()+"/likes", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Single-setting read is admin only.
	resp = do("GET", "/api/admin/settings/siteName", adminToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do("GET", "/api/admin/settings/noSuchKey", adminToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do("GET", "/api/admin/settings/siteName", memberToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
