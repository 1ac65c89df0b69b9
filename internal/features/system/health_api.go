package system

import (
	"github.com/gofiber/fiber/v2"
)

type HealthApi struct{}

func NewHealthApi() *HealthApi {
	return &HealthApi{}
}

// Setup registers health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
}

func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}
