package artifact

import (
	"go-cms/internal/common/api"
	"go-cms/internal/config"
	"go-cms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ArtifactApi struct {
	controller *ArtifactController
	config     *config.Config
}

func NewArtifactApi(controller *ArtifactController, config *config.Config) api.Route {
	return &ArtifactApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all artifact routes
func (h *ArtifactApi) Setup(app *fiber.App) {
	group := app.Group("/api/artifacts", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.ListArtifacts)
}
