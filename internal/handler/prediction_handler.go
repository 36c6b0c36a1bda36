package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/prediction"
	"github.com/edupulse/dropout-risk-api/internal/repository"
	"github.com/edupulse/dropout-risk-api/internal/service"
	"github.com/edupulse/dropout-risk-api/internal/utils"
)

// PredictionHandler serves the risk prediction endpoints.
type PredictionHandler struct {
	service service.PredictionService
	logger  zerolog.Logger
}

// NewPredictionHandler constructs a prediction handler.
func NewPredictionHandler(service service.PredictionService, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service: service,
		logger:  logger.With().Str("component", "prediction_handler").Logger(),
	}
}

// Register wires prediction routes.
func (h *PredictionHandler) Register(router fiber.Router) {
	router.Post("/predict/batch", h.predictBatch)
	router.Post("/predict/:roll_no", h.predict)
	router.Get("/predict/status", h.status)
	router.Get("/model/info", h.modelInfo)
}

func (h *PredictionHandler) predict(c *fiber.Ctx) error {
	rollNo := strings.TrimSpace(c.Params("roll_no"))
	if rollNo == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "roll number is required")
	}

	report, err := h.service.Predict(c.Context(), rollNo)
	if err != nil {
		return h.sendPredictionError(c, rollNo, err)
	}

	return utils.SendSuccess(c, "prediction generated", report)
}

func (h *PredictionHandler) predictBatch(c *fiber.Ctx) error {
	var payload dto.BatchPredictRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(payload); err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "roll_numbers must contain between 1 and 100 entries")
		}
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	results := h.service.BatchPredict(c.Context(), payload.RollNumbers)
	return utils.SendSuccess(c, "batch prediction complete", results)
}

func (h *PredictionHandler) status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "prediction service status", h.service.Status(c.Context()))
}

func (h *PredictionHandler) modelInfo(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "model info", h.service.ModelInfo())
}

func (h *PredictionHandler) sendPredictionError(c *fiber.Ctx, rollNo string, err error) error {
	var inferenceErr *prediction.InferenceError
	switch {
	case errors.Is(err, repository.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, prediction.ErrBundleNotLoaded):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "model not loaded")
	case errors.As(err, &inferenceErr):
		requestLogger(h.logger, c).Error().Err(err).Str("roll_no", rollNo).Msg("inference failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "prediction failed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Str("roll_no", rollNo).Msg("prediction failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "prediction failed")
	}
}
