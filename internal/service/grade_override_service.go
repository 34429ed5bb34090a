package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
)

// ReportInvalidator drops cached reports after grades change.
type ReportInvalidator interface {
	InvalidateAssignment(ctx context.Context, assignmentID uint)
}

// GradeOverrideService applies manual grade changes made by instructors.
type GradeOverrideService interface {
	OverrideParticipantGrade(ctx context.Context, participantID uint, req dto.ParticipantGradeRequest, actor ActivityActor) (dto.ParticipantGradeResponse, error)
	SaveTeamGrade(ctx context.Context, participantID uint, req dto.TeamGradeRequest, actor ActivityActor) (dto.TeamGradeResponse, error)
}

type gradeOverrideService struct {
	participants repository.ParticipantRepository
	authorizer   Authorizer
	recorder     ActivityRecorder
	invalidator  ReportInvalidator
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewGradeOverrideService constructs the override service. invalidator may be nil.
func NewGradeOverrideService(participants repository.ParticipantRepository, authorizer Authorizer, recorder ActivityRecorder, invalidator ReportInvalidator, validator *validator.Validate, logger zerolog.Logger) GradeOverrideService {
	return &gradeOverrideService{
		participants: participants,
		authorizer:   authorizer,
		recorder:     recorder,
		invalidator:  invalidator,
		validator:    validator,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "grade_override_service").Logger(),
	}
}

// OverrideParticipantGrade stores req.Grade as the participant's final grade,
// or clears the override when it is nil. A grade equal to the submitted total
// score at two decimals is not an override and leaves the participant untouched.
func (s *gradeOverrideService) OverrideParticipantGrade(ctx context.Context, participantID uint, req dto.ParticipantGradeRequest, actor ActivityActor) (dto.ParticipantGradeResponse, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return dto.ParticipantGradeResponse{}, storeError(fmt.Sprintf("participant %d", participantID), err)
	}

	if !s.authorizer.IsAuthorized(ctx, actor.Role, participant.AssignmentID, CapabilityEditGrades) {
		return dto.ParticipantGradeResponse{}, fmt.Errorf("override grade of participant %d: %w", participantID, grading.ErrForbidden)
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.ParticipantGradeResponse{}, err
	}

	response := dto.ParticipantGradeResponse{ParticipantID: participant.ID, Grade: participant.Grade}

	if req.Grade != nil && req.TotalScore != nil && formatScore(*req.Grade) == formatScore(*req.TotalScore) {
		response.Message = "grade matches the computed score; nothing to override"
		return response, nil
	}
	if sameGrade(participant.Grade, req.Grade) {
		response.Message = "grade unchanged"
		return response, nil
	}

	previous := participant.Grade
	participant.Grade = req.Grade
	if err := s.participants.Update(ctx, &participant); err != nil {
		s.logger.Error().Err(err).Uint("participant_id", participant.ID).Msg("failed to store grade override")
		return dto.ParticipantGradeResponse{}, storeError("update participant grade", err)
	}

	action := models.ActivityGradeOverridden
	response.Message = fmt.Sprintf("a score of %s has been saved for %s", formatScore(derefScore(req.Grade)), participant.Handle)
	if req.Grade == nil {
		action = models.ActivityGradeCleared
		response.Message = fmt.Sprintf("the computed score will be used for %s", participant.Handle)
	}
	response.Grade = req.Grade
	response.Changed = true

	s.record(ctx, ActivityEntry{
		AssignmentID: participant.AssignmentID,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Action:       action,
		EntityType:   "participant",
		EntityID:     participant.ID,
		Metadata: map[string]interface{}{
			"previous_grade": previous,
			"grade":          req.Grade,
		},
	})
	s.invalidate(ctx, participant.AssignmentID)

	return response, nil
}

// SaveTeamGrade stores the grade and comment the participant's team received for its submission.
func (s *gradeOverrideService) SaveTeamGrade(ctx context.Context, participantID uint, req dto.TeamGradeRequest, actor ActivityActor) (dto.TeamGradeResponse, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return dto.TeamGradeResponse{}, storeError(fmt.Sprintf("participant %d", participantID), err)
	}

	if !s.authorizer.IsAuthorized(ctx, actor.Role, participant.AssignmentID, CapabilityEditGrades) {
		return dto.TeamGradeResponse{}, fmt.Errorf("grade team of participant %d: %w", participantID, grading.ErrForbidden)
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.TeamGradeResponse{}, err
	}

	team, err := s.participants.TeamForParticipant(ctx, participant.ID)
	if err != nil {
		return dto.TeamGradeResponse{}, storeError(fmt.Sprintf("team of participant %d", participant.ID), err)
	}

	team.GradeForSubmission = req.GradeForSubmission
	team.CommentForSubmission = strings.TrimSpace(s.sanitizer.Sanitize(req.CommentForSubmission))
	if err := s.participants.UpdateTeam(ctx, &team); err != nil {
		s.logger.Error().Err(err).Uint("team_id", team.ID).Msg("failed to store team grade")
		return dto.TeamGradeResponse{}, storeError("update team grade", err)
	}

	s.record(ctx, ActivityEntry{
		AssignmentID: participant.AssignmentID,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Action:       models.ActivityTeamGradeSaved,
		EntityType:   "team",
		EntityID:     team.ID,
		Metadata: map[string]interface{}{
			"grade_for_submission": req.GradeForSubmission,
			"has_comment":          team.CommentForSubmission != "",
		},
	})
	s.invalidate(ctx, participant.AssignmentID)

	return dto.TeamGradeResponse{
		TeamID:               team.ID,
		GradeForSubmission:   team.GradeForSubmission,
		CommentForSubmission: team.CommentForSubmission,
	}, nil
}

// record keeps the audit trail best effort; a failed write never undoes the grade change.
func (s *gradeOverrideService) record(ctx context.Context, entry ActivityEntry) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Uint("entity_id", entry.EntityID).Msg("failed to record grade activity")
	}
}

func (s *gradeOverrideService) invalidate(ctx context.Context, assignmentID uint) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAssignment(ctx, assignmentID)
	}
}

func formatScore(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func derefScore(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func sameGrade(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return formatScore(*a) == formatScore(*b)
}
