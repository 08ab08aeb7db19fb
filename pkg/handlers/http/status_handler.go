package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/moderation"
)

type statusService interface {
	Status() moderation.Status
}

type statusHandler struct {
	logger  *logrus.Logger
	service statusService
}

func NewStatusHandler(logger *logrus.Logger, service statusService) Handler {
	return &statusHandler{
		logger:  logger,
		service: service,
	}
}

// Handle @Summary Pipeline Status
// @Description Reports which moderation layers are enabled
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} moderation.Status "Pipeline status"
// @Router /api/v1/moderation/status [get]
func (h *statusHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Status())
}
