package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/service"
	"github.com/Suvodeep90/expertiza-E1792/internal/utils"
)

// GradeOverrideHandler serves instructor grade changes.
type GradeOverrideHandler struct {
	service service.GradeOverrideService
	logger  zerolog.Logger
}

// NewGradeOverrideHandler constructs the handler.
func NewGradeOverrideHandler(service service.GradeOverrideService, logger zerolog.Logger) *GradeOverrideHandler {
	return &GradeOverrideHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_override_handler").Logger(),
	}
}

// Register attaches override endpoints. guards run before each write route.
func (h *GradeOverrideHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Patch("/participants/:id", chain(guards, h.overrideGrade)...)
	router.Put("/participants/:id/team-grade", chain(guards, h.saveTeamGrade)...)
}

func chain(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	return append(handlers, handler)
}

func (h *GradeOverrideHandler) overrideGrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ParticipantGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.OverrideParticipantGrade(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save grade")
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *GradeOverrideHandler) saveTeamGrade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TeamGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SaveTeamGrade(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to save team grade")
	}

	return utils.SendSuccess(c, "grade and comment for submission successfully saved", result)
}
