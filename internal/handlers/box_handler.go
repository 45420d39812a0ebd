package handlers

import (
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BoxHandler struct {
	boxService *services.BoxService
}

func NewBoxHandler(boxService *services.BoxService) *BoxHandler {
	return &BoxHandler{boxService: boxService}
}

func (h *BoxHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateBoxRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	box, err := h.boxService.Create(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("盲盒创建成功", fiber.Map{"box": box}))
}

func (h *BoxHandler) Get(c *fiber.Ctx) error {
	boxID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	box, err := h.boxService.GetByID(boxID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"box": box}))
}

func (h *BoxHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	q := dto.ListBoxesQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}
	if v := c.Query("is_featured"); v != "" {
		featured := v == "true"
		q.IsFeatured = &featured
	}

	boxes, total, err := h.boxService.List(&q)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"boxes":      boxes,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

// DrawRandom hands the caller one unseen box. 404 here means the caller
// has seen everything there is to see.
func (h *BoxHandler) DrawRandom(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	box, err := h.boxService.DrawRandom(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"box": box}))
}

func (h *BoxHandler) Update(c *fiber.Ctx) error {
	boxID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateBoxRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	box, err := h.boxService.Update(boxID, userID, middleware.CurrentRole(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("盲盒更新成功", fiber.Map{"box": box}))
}

func (h *BoxHandler) Delete(c *fiber.Ctx) error {
	boxID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.boxService.Delete(boxID, userID, middleware.CurrentRole(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("盲盒已删除", nil))
}
