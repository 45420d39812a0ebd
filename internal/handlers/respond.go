package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error taxonomy onto HTTP status codes.
// Unclassified errors become a generic 500; the detail goes to the log,
// not the client.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNoBoxAvailable):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail(services.ErrNoBoxAvailable.Error()))
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail(messageOf(err)))
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail(messageOf(err)))
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail(messageOf(err)))
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(messageOf(err)))
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountFrozen),
		errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(err.Error()))
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("服务器内部错误"))
	}
}

// messageOf strips the sentinel prefix ("not found: 盲盒不存在" → "盲盒不存在").
func messageOf(err error) string {
	msg := err.Error()
	if _, detail, found := strings.Cut(msg, ": "); found {
		return detail
	}
	return msg
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("认证失败，请重新登录"))
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(message))
}

// pageParams clamps pagination query values to sane bounds.
func pageParams(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
