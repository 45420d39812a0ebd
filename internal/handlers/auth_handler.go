package handlers

import (
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("注册成功", resp))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("登录成功", resp))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return badRequest(c, "缺少刷新令牌")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("令牌刷新成功", resp))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.authService.Logout(&req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("已退出登录", nil))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.authService.Me(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"user": user}))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("用户信息更新成功", fiber.Map{"user": user}))
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("密码修改成功", nil))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("密码重置成功", nil))
}

func (h *AuthHandler) SendVerificationCode(c *fiber.Ctx) error {
	var req dto.SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.authService.SendVerificationCode(req.Phone, req.Type); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("验证码已发送", nil))
}
