package backup

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type BackupController struct {
	Service BackupService
}

func NewBackupController(service BackupService) *BackupController {
	return &BackupController{
		Service: service,
	}
}

func (ctrl *BackupController) RunBackup(c *fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	// An empty body means the default commit message.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	run, err := ctrl.Service.RunSync(c.Context(), body.Message, TriggerManual)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": run,
	})
}

func (ctrl *BackupController) GetStatus(c *fiber.Ctx) error {
	status, err := ctrl.Service.GetStatus(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(status)
}

func (ctrl *BackupController) GetSettings(c *fiber.Ctx) error {
	cfg, err := ctrl.Service.GetSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The credential itself never leaves the service; only its presence does.
	return c.JSON(fiber.Map{
		"data":           cfg,
		"has_credential": cfg.Credential != "",
	})
}

func (ctrl *BackupController) UpdateSettings(c *fiber.Ctx) error {
	var input UpdateSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	cfg, err := ctrl.Service.UpdateSettings(c.Context(), input)
	if err != nil {
		if errors.Is(err, ErrInvalidSettings) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Backup settings saved successfully",
		"data":    cfg,
	})
}

func (ctrl *BackupController) EnableSchedule(c *fiber.Ctx) error {
	var body struct {
		IntervalHours int `json:"interval_hours"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	state, err := ctrl.Service.EnableSchedule(c.Context(), body.IntervalHours)
	if err != nil {
		if errors.Is(err, ErrInvalidInterval) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": state,
	})
}

func (ctrl *BackupController) DisableSchedule(c *fiber.Ctx) error {
	state, err := ctrl.Service.DisableSchedule(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": state,
	})
}
