package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edupulse/dropout-risk-api/internal/config"
	"github.com/edupulse/dropout-risk-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	ModelLoaded bool      `json:"model_loaded"`
}

// ModelStatus reports whether the risk model bundle is ready.
type ModelStatus interface {
	Loaded() bool
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config, model ModelStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}
		if model != nil {
			payload.ModelLoaded = model.Loaded()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
