package middleware

import (
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminRequired gates a route on the ADMIN role. The claim is only a
// hint; the stored role decides, so a demoted admin loses access
// without waiting for token expiry.
func AdminRequired(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("认证失败，请重新登录"))
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("用户不存在"))
		}

		if models.NormalizeRole(user.Role) != models.RoleAdmin || !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("需要管理员权限"))
		}

		return c.Next()
	}
}
