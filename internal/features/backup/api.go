package backup

import (
	"go-cms/internal/common/api"
	"go-cms/internal/config"
	"go-cms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BackupApi struct {
	controller *BackupController
	config     *config.Config
}

func NewBackupApi(controller *BackupController, config *config.Config) api.Route {
	return &BackupApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all backup routes
func (h *BackupApi) Setup(app *fiber.App) {
	group := app.Group("/api/backup", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/run", h.controller.RunBackup)
	group.Get("/status", h.controller.GetStatus)
	group.Get("/settings", h.controller.GetSettings)
	group.Put("/settings", h.controller.UpdateSettings)
	group.Post("/schedule/enable", h.controller.EnableSchedule)
	group.Post("/schedule/disable", h.controller.DisableSchedule)
}
