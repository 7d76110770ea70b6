package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/config"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
	"gorm.io/gorm"
)

// HealthHandler serves the health check
type HealthHandler struct {
	Config   *config.Config
	DB       *gorm.DB
	Provider services.IdentityProvider
	Queue    services.Pinger
	Log      *slog.Logger
}

// Health handles GET /api/health
// @Summary Health check
// @Description Report database, identity provider and queue connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Provider, h.Queue, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
