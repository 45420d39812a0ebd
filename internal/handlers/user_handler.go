package handlers

import (
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserHandler serves per-user content listings. The ":id" path segment
// accepts "me" as an alias for the caller; viewing another user's
// content is an admin-only affair, enforced in the service.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func targetUserID(c *fiber.Ctx, callerID uuid.UUID) (uuid.UUID, error) {
	raw := c.Params("id")
	if raw == "" || raw == "me" {
		return callerID, nil
	}
	return uuid.Parse(raw)
}

func (h *UserHandler) Boxes(c *fiber.Ctx) error {
	callerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := targetUserID(c, callerID)
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	page, limit := pageParams(c)
	boxes, total, err := h.userService.Boxes(targetID, callerID, middleware.CurrentRole(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"boxes":      boxes,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *UserHandler) Replies(c *fiber.Ctx) error {
	callerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := targetUserID(c, callerID)
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	page, limit := pageParams(c)
	replies, total, err := h.userService.Replies(targetID, callerID, middleware.CurrentRole(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"replies":    replies,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *UserHandler) Likes(c *fiber.Ctx) error {
	callerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := targetUserID(c, callerID)
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	page, limit := pageParams(c)
	likes, total, err := h.userService.Likes(targetID, callerID, middleware.CurrentRole(c), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"likes":      likes,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	callerID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := targetUserID(c, callerID)
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	if err := h.userService.Delete(targetID, callerID, middleware.CurrentRole(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("账号已注销", nil))
}
