package middleware

import (
	"strings"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Maintenance returns 503 for user-facing traffic while the
// maintenanceMode setting is on. Auth and admin surfaces stay reachable
// so an admin can log in and switch it back off.
func Maintenance(settings *services.SettingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !settings.GetBool(services.KeyMaintenanceMode, false) {
			return c.Next()
		}

		path := c.Path()
		if strings.HasPrefix(path, "/api/auth") ||
			strings.HasPrefix(path, "/api/admin") ||
			strings.HasPrefix(path, "/api/health") {
			return c.Next()
		}

		message := settings.GetString(services.KeyMaintenanceMessage, "系统维护中，请稍后再试")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Fail(message))
	}
}
