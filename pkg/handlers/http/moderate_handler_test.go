package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modguard/pipeline/pkg/moderation"
)

type stubPipeline struct {
	result     moderation.Result
	lastText   string
	quickCalls int
	fullCalls  int
}

func (s *stubPipeline) Moderate(_ context.Context, req moderation.Request) moderation.Result {
	s.fullCalls++
	s.lastText = req.Text
	return s.result
}

func (s *stubPipeline) QuickCheck(req moderation.Request) moderation.Result {
	s.quickCalls++
	s.lastText = req.Text
	return s.result
}

func (s *stubPipeline) Status() moderation.Status {
	return moderation.Status{
		Layers: moderation.StatusLayers{Blocklist: true, Local: true, Classifier: true},
		Config: moderation.StatusConfig{TimeoutMs: 3000},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestModerateHandler_Success(t *testing.T) {
	service := &stubPipeline{
		result: moderation.Result{
			Allowed: false,
			Reason:  "content contains inappropriate language",
			Telemetry: moderation.Telemetry{
				RequestID:  "a1b2c3d4e5f60718",
				DurationMs: 12,
				Layer:      moderation.LayerLocal,
				Category:   "profanity",
			},
		},
	}
	handler := NewModerateHandler(testLogger(), service)

	app := fiber.New()
	app.Post("/api/v1/moderation", handler.Handle)

	body, err := json.Marshal(moderation.Request{Text: "some candidate text"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/moderation", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.fullCalls)
	assert.Equal(t, "some candidate text", service.lastText)

	var result moderation.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Allowed)
	assert.Equal(t, moderation.LayerLocal, result.Telemetry.Layer)
	assert.Equal(t, "a1b2c3d4e5f60718", result.Telemetry.RequestID)
}

func TestModerateHandler_InvalidBody(t *testing.T) {
	service := &stubPipeline{}
	handler := NewModerateHandler(testLogger(), service)

	app := fiber.New()
	app.Post("/api/v1/moderation", handler.Handle)

	req := httptest.NewRequest("POST", "/api/v1/moderation", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, service.fullCalls)
}

func TestModerateHandler_EmptyBody(t *testing.T) {
	service := &stubPipeline{}
	handler := NewModerateHandler(testLogger(), service)

	app := fiber.New()
	app.Post("/api/v1/moderation", handler.Handle)

	req := httptest.NewRequest("POST", "/api/v1/moderation", nil)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, service.fullCalls)
}

func TestQuickCheckHandler_Success(t *testing.T) {
	service := &stubPipeline{
		result: moderation.Result{
			Allowed: true,
			Telemetry: moderation.Telemetry{
				RequestID: "00ff00ff00ff00ff",
				Layer:     moderation.LayerNone,
			},
		},
	}
	handler := NewQuickCheckHandler(testLogger(), service)

	app := fiber.New()
	app.Post("/api/v1/moderation/quick", handler.Handle)

	body, err := json.Marshal(moderation.Request{Text: "hello"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/moderation/quick", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, service.quickCalls)
	assert.Equal(t, 0, service.fullCalls)

	var result moderation.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Allowed)
}

func TestStatusHandler(t *testing.T) {
	handler := NewStatusHandler(testLogger(), &stubPipeline{})

	app := fiber.New()
	app.Get("/api/v1/moderation/status", handler.Handle)

	req := httptest.NewRequest("GET", "/api/v1/moderation/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status moderation.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Layers.Blocklist)
	assert.False(t, status.Layers.Secondary)
	assert.Equal(t, int64(3000), status.Config.TimeoutMs)
}
