package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/utils"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	logger *zap.Logger
}

func NewHealthHandler(store Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) Live(c fiber.Ctx) error {
	return utils.JSON(c, fiber.StatusOK, fiber.Map{"status": "up"})
}

// Ready fails with 503 while the store cannot be reached.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		h.logger.Warn("store not ready", zap.Error(err))
		return utils.Error(c, fiber.StatusServiceUnavailable, "Almacenamiento no disponible")
	}
	return utils.JSON(c, fiber.StatusOK, fiber.Map{"status": "ready"})
}
