package handlers

import (
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReplyHandler struct {
	replyService *services.ReplyService
}

func NewReplyHandler(replyService *services.ReplyService) *ReplyHandler {
	return &ReplyHandler{replyService: replyService}
}

func (h *ReplyHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	boxID, err := uuid.Parse(req.BoxID)
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	reply, err := h.replyService.Create(userID, boxID, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("回复成功", fiber.Map{"reply": reply}))
}

func (h *ReplyHandler) Delete(c *fiber.Ctx) error {
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "回复ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.replyService.Delete(replyID, userID, middleware.CurrentRole(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("回复已删除", nil))
}

func (h *ReplyHandler) ToggleLike(c *fiber.Ctx) error {
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "回复ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	liked, err := h.replyService.ToggleLike(replyID, userID)
	if err != nil {
		return respondError(c, err)
	}

	msg := "已取消点赞"
	if liked {
		msg = "点赞成功"
	}
	return c.JSON(dto.OKMessage(msg, fiber.Map{"liked": liked}))
}

func (h *ReplyHandler) LikeStatus(c *fiber.Ctx) error {
	replyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "回复ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	liked, err := h.replyService.LikeStatus(replyID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"liked": liked}))
}
