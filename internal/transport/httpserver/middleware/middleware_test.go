package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecover_ReturnsRequestID(t *testing.T) {
	obs, logs := observer.New(zapcore.ErrorLevel)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Recover(zap.New(obs)))
	app.Get("/boom", func(*fiber.Ctx) error { panic("nil drama") })

	req := httptest.NewRequest("GET", "/boom", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-42")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var got struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "PANIC", got.Code)
	assert.Equal(t, "req-42", got.Details["requestId"])

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "nil drama", entry.ContextMap()["error"])
	assert.Equal(t, "/boom", entry.ContextMap()["route"])
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
		msg    string
	}{
		{fiber.StatusOK, zapcore.DebugLevel, "request completed"},
		{fiber.StatusNotFound, zapcore.WarnLevel, "request error"},
		{fiber.StatusUnauthorized, zapcore.InfoLevel, "session rejected"},
		{fiber.StatusBadGateway, zapcore.ErrorLevel, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			obs, logs := observer.New(zapcore.DebugLevel)

			app := fiber.New()
			app.Use(Logger(zap.New(obs)))
			app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(tt.status) })

			_, err := app.Test(httptest.NewRequest("GET", "/x", nil), -1)
			require.NoError(t, err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.msg, entry.Message)
			assert.EqualValues(t, tt.status, entry.ContextMap()["status"])
		})
	}
}

func TestHealthCheck(t *testing.T) {
	var storeErr error

	app := fiber.New()
	app.Use(NewHealthCheck(func(context.Context) error { return storeErr }))

	resp, err := app.Test(httptest.NewRequest("GET", "/livez", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/readyz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	storeErr = errors.New("redis down")
	resp, err = app.Test(httptest.NewRequest("GET", "/readyz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
