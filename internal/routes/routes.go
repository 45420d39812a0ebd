package routes

import (
	"time"

	"github.com/emotionbox/emotionbox-server/internal/config"
	"github.com/emotionbox/emotionbox-server/internal/handlers"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	boxHandler *handlers.BoxHandler,
	replyHandler *handlers.ReplyHandler,
	userHandler *handlers.UserHandler,
	uploadHandler *handlers.UploadHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/send-verification-code", authHandler.SendVerificationCode)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes, applied per route so the public ones above
	// stay reachable without a token.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Put("/auth/me", middleware.JWTProtected(cfg), authHandler.UpdateMe)
	api.Put("/auth/password", middleware.JWTProtected(cfg), authHandler.ChangePassword)

	// Boxes
	boxes := api.Group("/boxes", middleware.JWTProtected(cfg))
	boxes.Post("/", boxHandler.Create)
	boxes.Get("/", boxHandler.List)
	boxes.Get("/random/one", boxHandler.DrawRandom)
	boxes.Get("/:id", boxHandler.Get)
	boxes.Put("/:id", boxHandler.Update)
	boxes.Delete("/:id", boxHandler.Delete)

	// Replies
	replies := api.Group("/replies", middleware.JWTProtected(cfg))
	replies.Post("/", replyHandler.Create)
	replies.Delete("/:id", replyHandler.Delete)
	replies.Post("/:id/like", replyHandler.ToggleLike)
	replies.Get("/:id/like-status", replyHandler.LikeStatus)

	// Per-user content, ":id" may be "me". Anything but the caller's own
	// content needs an admin token.
	users := api.Group("/users", middleware.JWTProtected(cfg))
	users.Get("/:id/boxes", userHandler.Boxes)
	users.Get("/:id/replies", userHandler.Replies)
	users.Get("/:id/likes", userHandler.Likes)
	users.Delete("/:id", userHandler.DeleteAccount)

	// Uploads
	uploads := api.Group("/upload", middleware.JWTProtected(cfg))
	uploads.Post("/single", uploadHandler.UploadImage)
	uploads.Post("/multiple", uploadHandler.UploadImages)
	uploads.Delete("/:date/:filename", uploadHandler.DeleteImage)

	// Admin console
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db))

	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id/status", adminHandler.SetUserStatus)
	admin.Put("/users/:id/role", adminHandler.SetUserRole)
	admin.Delete("/users/:id", userHandler.DeleteAccount)

	admin.Get("/boxes", adminHandler.ListBoxes)
	admin.Put("/boxes/:id/featured", adminHandler.SetBoxFeatured)
	admin.Put("/boxes/:id/archive", adminHandler.ArchiveBox)
	admin.Delete("/boxes/:id", boxHandler.Delete)

	admin.Get("/replies", adminHandler.ListReplies)
	admin.Delete("/replies/:id", replyHandler.Delete)

	admin.Get("/sensitive-words", adminHandler.ListSensitiveWords)
	admin.Post("/sensitive-words", adminHandler.AddSensitiveWord)
	admin.Put("/sensitive-words/:id", adminHandler.UpdateSensitiveWord)
	admin.Delete("/sensitive-words/:id", adminHandler.DeleteSensitiveWord)

	admin.Get("/settings", adminHandler.ListSettings)
	admin.Get("/settings/:key", adminHandler.GetSetting)
	admin.Put("/settings", adminHandler.UpdateSettings)
	admin.Put("/settings/:key", adminHandler.SetSetting)
	admin.Post("/settings/reset", adminHandler.ResetSettings)

	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/stats/popular-boxes", adminHandler.PopularBoxes)
	admin.Get("/stats/active-users", adminHandler.ActiveUsers)
}
