package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/Suvodeep90/expertiza-E1792/internal/dto"
	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
)

// ActivityActor represents the authenticated user performing a request.
type ActivityActor struct {
	ID   uint
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	AssignmentID uint
	ActorID      uint
	ActorRole    string
	Action       string
	EntityType   string
	EntityID     uint
	Metadata     map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist the grade audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, actor ActivityActor, req dto.ActivityListRequest) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo       repository.ActivityLogRepository
	authorizer Authorizer
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, authorizer Authorizer, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:       repo,
		authorizer: authorizer,
		validator:  validator,
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("action is required")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return dto.ActivityResponse{}, fmt.Errorf("entity type is required")
	}

	model := models.ActivityLog{
		AssignmentID: entry.AssignmentID,
		ActorID:      entry.ActorID,
		ActorRole:    normalizeRole(entry.ActorRole),
		Action:       strings.ToLower(strings.TrimSpace(entry.Action)),
		EntityType:   strings.ToLower(strings.TrimSpace(entry.EntityType)),
		EntityID:     entry.EntityID,
		Metadata:     sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, storeError("record activity", err)
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, actor ActivityActor, req dto.ActivityListRequest) ([]dto.ActivityResponse, error) {
	if !s.authorizer.IsAuthorized(ctx, actor.Role, req.AssignmentID, CapabilityViewGrades) {
		return nil, fmt.Errorf("activity of assignment %d: %w", req.AssignmentID, grading.ErrForbidden)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	entries, err := s.repo.List(ctx, repository.ActivityLogFilter{
		AssignmentID: req.AssignmentID,
		EntityType:   strings.TrimSpace(req.EntityType),
		EntityID:     req.EntityID,
		Limit:        limit,
	})
	if err != nil {
		return nil, storeError("list activity", err)
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}
	return responses, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := CanonicalRole(role)
	if r == "" {
		return "system"
	}
	return r
}
