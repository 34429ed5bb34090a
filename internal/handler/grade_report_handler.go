package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/service"
	"github.com/Suvodeep90/expertiza-E1792/internal/utils"
)

// GradeReportHandler serves the read side of the grades API.
type GradeReportHandler struct {
	reports  service.GradeReportService
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewGradeReportHandler constructs the handler.
func NewGradeReportHandler(reports service.GradeReportService, activity service.ActivityService, logger zerolog.Logger) *GradeReportHandler {
	return &GradeReportHandler{
		reports:  reports,
		activity: activity,
		logger:   logger.With().Str("component", "grade_report_handler").Logger(),
	}
}

// Register attaches report endpoints to the grades group.
func (h *GradeReportHandler) Register(router fiber.Router) {
	router.Get("/assignments/:id", h.assignmentReport)
	router.Get("/assignments/:id/activity", h.activityLog)
	router.Get("/participants/:id", h.participantReport)
	router.Get("/participants/:id/team", h.teamReport)
	router.Get("/participants/:id/team/access", h.teamAccess)
}

func (h *GradeReportHandler) assignmentReport(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reports.BuildAssignmentReport(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to build assignment report")
	}

	return utils.SendSuccess(c, "assignment report generated", report)
}

func (h *GradeReportHandler) participantReport(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reports.BuildParticipantReport(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to build participant report")
	}

	return utils.SendSuccess(c, "participant report generated", report)
}

func (h *GradeReportHandler) teamReport(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reports.BuildTeamReport(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to build team report")
	}

	return utils.SendSuccess(c, "team report generated", report)
}

func (h *GradeReportHandler) teamAccess(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	allowed, err := h.reports.CanViewTeam(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to check team access")
	}

	return utils.SendSuccess(c, "", fiber.Map{"can_view": allowed})
}

func (h *GradeReportHandler) activityLog(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity_id")
	}

	entries, err := h.activity.List(c.UserContext(), activityActorFromContext(c), dto.ActivityListRequest{
		AssignmentID: id,
		EntityType:   c.Query("entity_type"),
		EntityID:     entityID,
		Limit:        limit,
	})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list grade activity")
	}

	return utils.SendSuccess(c, "grade activity retrieved", entries)
}
