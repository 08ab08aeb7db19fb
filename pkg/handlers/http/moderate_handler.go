package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/moderation"
)

type moderationService interface {
	Moderate(ctx context.Context, req moderation.Request) moderation.Result
}

type moderateHandler struct {
	logger  *logrus.Logger
	service moderationService
}

func NewModerateHandler(logger *logrus.Logger, service moderationService) Handler {
	return &moderateHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Moderate Content
// @Description Runs the full moderation pipeline over the submitted text
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} moderation.Result "Moderation decision"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Router /api/v1/moderation [post]
func (h *moderateHandler) Handle(c *fiber.Ctx) error {
	var req moderation.Request
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse moderation request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Text) == "" && len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "request body is required",
		})
	}

	result := h.service.Moderate(c.Context(), req)
	return c.Status(fiber.StatusOK).JSON(result)
}
