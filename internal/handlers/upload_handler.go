package handlers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emotionbox/emotionbox-server/internal/config"
	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/emotionbox/emotionbox-server/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadHandler stores user images under uploads/YYYY-MM-DD/<uuid>.<ext>.
type UploadHandler struct {
	cfg *config.Config
}

func NewUploadHandler(cfg *config.Config) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

func (h *UploadHandler) saveOne(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if file.Size > h.cfg.MaxFileSize {
		return "", fmt.Errorf("文件大小不能超过 %dMB", h.cfg.MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("仅支持 jpg/jpeg/png/webp 格式的图片")
	}

	dir := filepath.Join(h.cfg.UploadDir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		return "", err
	}

	return "/" + filepath.ToSlash(filepath.Join(h.cfg.UploadDir, time.Now().Format("2006-01-02"), name)), nil
}

func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	if _, err := middleware.CurrentUserID(c); err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "请选择要上传的图片")
	}

	url, err := h.saveOne(c, file)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(dto.OKMessage("上传成功", fiber.Map{"url": url}))
}

func (h *UploadHandler) UploadImages(c *fiber.Ctx) error {
	if _, err := middleware.CurrentUserID(c); err != nil {
		return unauthorized(c)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "请求格式错误")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return badRequest(c, "请选择要上传的图片")
	}
	if len(files) > 5 {
		return badRequest(c, "一次最多上传5张图片")
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := h.saveOne(c, file)
		if err != nil {
			return badRequest(c, err.Error())
		}
		urls = append(urls, url)
	}

	return c.JSON(dto.OKMessage("上传成功", fiber.Map{"urls": urls}))
}

// DeleteImage removes a previously uploaded file. The date and filename
// segments are validated so the path cannot escape the upload root.
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	if _, err := middleware.CurrentUserID(c); err != nil {
		return unauthorized(c)
	}

	date := c.Params("date")
	name := c.Params("filename")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return badRequest(c, "文件路径格式错误")
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return badRequest(c, "文件路径格式错误")
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(name))] {
		return badRequest(c, "文件路径格式错误")
	}

	path := filepath.Join(h.cfg.UploadDir, date, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("文件不存在"))
		}
		return respondError(c, err)
	}

	return c.JSON(dto.OKMessage("文件已删除", nil))
}
