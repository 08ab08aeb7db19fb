package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	infraPrometheus "github.com/modguard/pipeline/pkg/infra/prometheus"
)

type blocklistReloader interface {
	Reload(ctx context.Context) (int, error)
}

type reloadBlocklistHandler struct {
	logger    *logrus.Logger
	blocklist blocklistReloader
}

func NewReloadBlocklistHandler(logger *logrus.Logger, blocklist blocklistReloader) Handler {
	return &reloadBlocklistHandler{
		logger:    logger,
		blocklist: blocklist,
	}
}

// Handle @Summary Reload Blocklist
// @Description Reloads the blocklist from its backing store and swaps the cached snapshot
// @Tags Moderation
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Reload result"
// @Failure 502 {object} map[string]interface{} "Backing store unavailable"
// @Router /api/v1/moderation/blocklist/reload [post]
func (h *reloadBlocklistHandler) Handle(c *fiber.Ctx) error {
	count, err := h.blocklist.Reload(c.Context())
	if err != nil {
		infraPrometheus.BlocklistReloadTotal.WithLabelValues("failure").Inc()
		h.logger.WithError(err).Error("failed to reload blocklist")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to reload blocklist",
		})
	}

	infraPrometheus.BlocklistReloadTotal.WithLabelValues("success").Inc()
	h.logger.WithField("entries", count).Info("blocklist reloaded")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "blocklist reloaded",
		"entries": count,
	})
}
