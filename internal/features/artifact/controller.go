package artifact

import (
	"github.com/gofiber/fiber/v2"
)

type ArtifactController struct {
	Source Source
}

func NewArtifactController(source Source) *ArtifactController {
	return &ArtifactController{
		Source: source,
	}
}

func (ctrl *ArtifactController) ListArtifacts(c *fiber.Ctx) error {
	artifacts, err := ctrl.Source.Artifacts(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	type entry struct {
		ID           string `json:"id"`
		RelativePath string `json:"relative_path"`
		Size         int    `json:"size"`
	}
	entries := make([]entry, 0, len(artifacts))
	for _, a := range artifacts {
		entries = append(entries, entry{
			ID:           a.ID,
			RelativePath: a.RelativePath,
			Size:         len(a.Body),
		})
	}

	return c.JSON(fiber.Map{
		"data": entries,
	})
}
