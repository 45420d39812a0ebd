package main

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/emotionbox/emotionbox-server/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorHandler_Envelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: customErrorHandler})
	app.Get("/client-error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "上传文件过大")
	})
	app.Get("/server-error", func(c *fiber.Ctx) error {
		return errors.New("connection pool exhausted")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/client-error", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	var body dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "上传文件过大", body.Message)

	// Server errors never leak their detail to the client.
	resp, err = app.Test(httptest.NewRequest("GET", "/server-error", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body = dto.Response{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "服务器内部错误", body.Message)
	assert.NotContains(t, body.Message, "connection pool")
}
