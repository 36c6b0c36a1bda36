package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/repository"
	"github.com/edupulse/dropout-risk-api/internal/service"
	"github.com/edupulse/dropout-risk-api/internal/utils"
)

// StudentHandler serves the student roster endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires student routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:roll_no", h.get)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("search"))

	students, err := h.service.Search(c.Context(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	rollNo := strings.TrimSpace(c.Params("roll_no"))
	if rollNo == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "roll number is required")
	}

	student, err := h.service.Get(c.Context(), rollNo)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("roll_no", rollNo).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}
