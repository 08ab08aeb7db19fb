package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/moderation"
)

type quickCheckService interface {
	QuickCheck(req moderation.Request) moderation.Result
}

type quickCheckHandler struct {
	logger  *logrus.Logger
	service quickCheckService
}

func NewQuickCheckHandler(logger *logrus.Logger, service quickCheckService) Handler {
	return &quickCheckHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Quick Moderation Check
// @Description Runs only the local, network-free moderation layers
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} moderation.Result "Moderation decision"
// @Failure 400 {object} map[string]interface{} "Invalid request body"
// @Router /api/v1/moderation/quick [post]
func (h *quickCheckHandler) Handle(c *fiber.Ctx) error {
	var req moderation.Request
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse quick check request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result := h.service.QuickCheck(req)
	return c.Status(fiber.StatusOK).JSON(result)
}
