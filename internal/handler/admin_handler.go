package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/service"
	"github.com/edupulse/dropout-risk-api/internal/utils"
)

// AdminHandler serves the operator endpoints behind authentication.
type AdminHandler struct {
	predictions service.PredictionService
	seeder      service.SeedService
	seedFile    string
	logger      zerolog.Logger
}

// NewAdminHandler constructs an admin handler. seedFile is the default
// import path used when a request does not name one.
func NewAdminHandler(predictions service.PredictionService, seeder service.SeedService, seedFile string, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		predictions: predictions,
		seeder:      seeder,
		seedFile:    seedFile,
		logger:      logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/cache/clear", h.clearCache)
	router.Post("/seed", h.seed)
}

type clearCacheResponse struct {
	Removed int64 `json:"removed"`
}

func (h *AdminHandler) clearCache(c *fiber.Ctx) error {
	rollNo := strings.TrimSpace(c.Query("roll_no"))

	removed, err := h.predictions.ClearCache(c.Context(), rollNo)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to clear prediction cache")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear cache")
	}

	return utils.SendSuccess(c, "cache cleared", clearCacheResponse{Removed: removed})
}

func (h *AdminHandler) seed(c *fiber.Ctx) error {
	result, err := h.seeder.ImportFile(c.Context(), h.seedFile)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("path", h.seedFile).Msg("seed import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed import failed")
	}

	return utils.SendSuccess(c, "students imported", result)
}
