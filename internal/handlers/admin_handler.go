package handlers

import (
	"strconv"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminHandler covers the moderation console: users, boxes, replies,
// sensitive words, system settings and the dashboard statistics.
type AdminHandler struct {
	userService       *services.UserService
	boxService        *services.BoxService
	replyService      *services.ReplyService
	moderationService *services.ModerationService
	settingService    *services.SettingService
	statsService      *services.StatsService
}

func NewAdminHandler(
	users *services.UserService,
	boxes *services.BoxService,
	replies *services.ReplyService,
	moderation *services.ModerationService,
	settings *services.SettingService,
	stats *services.StatsService,
) *AdminHandler {
	return &AdminHandler{
		userService:       users,
		boxService:        boxes,
		replyService:      replies,
		moderationService: moderation,
		settingService:    settings,
		statsService:      stats,
	}
}

func boolQuery(c *fiber.Ctx, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

// --- users ---

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	q := services.AdminListUsersQuery{
		Page:     page,
		Limit:    limit,
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		IsActive: boolQuery(c, "is_active"),
	}

	users, total, err := h.userService.AdminList(&q)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"users":      users,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	user, err := h.userService.Get(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"user": user}))
}

func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	var req dto.SetUserStatusRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.userService.SetStatus(userID, *req.IsActive); err != nil {
		return respondError(c, err)
	}

	msg := "账号已冻结"
	if *req.IsActive {
		msg = "账号已解冻"
	}
	return c.JSON(dto.OKMessage(msg, nil))
}

func (h *AdminHandler) SetUserRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "用户ID格式错误")
	}

	var req dto.SetUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.userService.SetRole(userID, req.Role); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("用户角色已更新", nil))
}

// --- boxes ---

func (h *AdminHandler) ListBoxes(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	q := dto.AdminListBoxesQuery{
		Page:       page,
		Limit:      limit,
		Status:     c.Query("status"),
		UserID:     c.Query("user_id"),
		IsFeatured: boolQuery(c, "is_featured"),
		Search:     c.Query("search"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}

	boxes, total, err := h.boxService.AdminList(&q)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"boxes":      boxes,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *AdminHandler) SetBoxFeatured(c *fiber.Ctx) error {
	boxID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	var req dto.SetFeaturedRequest
	if err := c.BodyParser(&req); err != nil || req.IsFeatured == nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.boxService.Feature(boxID, *req.IsFeatured); err != nil {
		return respondError(c, err)
	}

	msg := "已取消精选"
	if *req.IsFeatured {
		msg = "已设为精选"
	}
	return c.JSON(dto.OKMessage(msg, nil))
}

func (h *AdminHandler) ArchiveBox(c *fiber.Ctx) error {
	boxID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "盲盒ID格式错误")
	}

	if err := h.boxService.Archive(boxID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("盲盒已下架", nil))
}

// --- replies ---

func (h *AdminHandler) ListReplies(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	minLikes, _ := strconv.Atoi(c.Query("min_likes"))
	q := services.AdminListRepliesQuery{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		BoxID:     c.Query("box_id"),
		UserID:    c.Query("user_id"),
		MinLikes:  minLikes,
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	replies, total, err := h.replyService.AdminList(&q)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"replies":    replies,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

// --- sensitive words ---

func (h *AdminHandler) ListSensitiveWords(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	words, total, err := h.moderationService.ListWords(c.Query("level"), page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"words":      words,
		"pagination": dto.NewPagination(page, limit, total),
	}))
}

func (h *AdminHandler) AddSensitiveWord(c *fiber.Ctx) error {
	var req dto.SensitiveWordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	word, err := h.moderationService.AddWord(req.Word, req.Level)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage("敏感词已添加", fiber.Map{"word": word}))
}

func (h *AdminHandler) UpdateSensitiveWord(c *fiber.Ctx) error {
	wordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "敏感词ID格式错误")
	}

	var req dto.SensitiveWordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	word, err := h.moderationService.UpdateWord(wordID, req.Word, req.Level)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("敏感词已更新", fiber.Map{"word": word}))
}

func (h *AdminHandler) DeleteSensitiveWord(c *fiber.Ctx) error {
	wordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "敏感词ID格式错误")
	}

	if err := h.moderationService.DeleteWord(wordID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("敏感词已删除", nil))
}

// --- settings ---

func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settingService.All()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"settings": settings}))
}

func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	setting, err := h.settingService.Get(c.Params("key"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"setting": setting}))
}

func (h *AdminHandler) SetSetting(c *fiber.Ctx) error {
	var req dto.SetSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.settingService.Set(c.Params("key"), req.Value); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("系统设置已更新", nil))
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req map[string]any
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "请求格式错误")
	}

	if err := h.settingService.Update(req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("系统设置已更新", nil))
}

func (h *AdminHandler) ResetSettings(c *fiber.Ctx) error {
	if err := h.settingService.Reset(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("系统设置已恢复默认", nil))
}

// --- statistics ---

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))
	if days < 1 || days > 90 {
		days = 7
	}

	stats, err := h.statsService.Stats(days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(stats))
}

func (h *AdminHandler) PopularBoxes(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	if days < 1 || days > 90 {
		days = 7
	}

	boxes, err := h.statsService.PopularBoxes(limit, days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{"boxes": boxes}))
}

func (h *AdminHandler) ActiveUsers(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "7"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	if days < 1 || days > 90 {
		days = 7
	}

	boxUsers, replyUsers, err := h.statsService.ActiveUsers(limit, days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.OK(fiber.Map{
		"by_boxes":   boxUsers,
		"by_replies": replyUsers,
	}))
}
