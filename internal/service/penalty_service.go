package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/observability"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
)

// PenaltiesCalculatedSubject is the NATS subject announcing a completed first penalty pass.
const PenaltiesCalculatedSubject = "grades.penalties.calculated"

// EventPublisher publishes raw event payloads. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// PenaltiesCalculatedEvent is the payload published on PenaltiesCalculatedSubject.
type PenaltiesCalculatedEvent struct {
	AssignmentID uint      `json:"assignment_id"`
	Participants int       `json:"participants"`
	Penalized    int       `json:"penalized"`
	RowsCreated  int       `json:"rows_created"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// PenaltyService computes late penalties for every participant of an assignment.
type PenaltyService interface {
	CalculateAll(ctx context.Context, assignment models.Assignment) (map[uint]grading.PenaltySummary, error)
}

type penaltyService struct {
	participants repository.ParticipantRepository
	penalties    repository.PenaltyRepository
	policy       PenaltyPolicy
	publisher    EventPublisher
	logger       zerolog.Logger
	now          func() time.Time
}

// NewPenaltyService constructs the penalty calculator. publisher may be nil.
func NewPenaltyService(participants repository.ParticipantRepository, penalties repository.PenaltyRepository, policy PenaltyPolicy, publisher EventPublisher, logger zerolog.Logger) PenaltyService {
	return &penaltyService{
		participants: participants,
		penalties:    penalties,
		policy:       policy,
		publisher:    publisher,
		logger:       logger.With().Str("component", "penalty_service").Logger(),
		now:          time.Now,
	}
}

// CalculateAll returns every participant's penalties. A total is charged only
// when all three deadline types accrued points, and is capped at the late
// policy maximum. Rows for charged participants are persisted once per
// assignment: the first pass claims the calculated flag and writes its rows in
// the same transaction, later passes only compute.
func (s *penaltyService) CalculateAll(ctx context.Context, assignment models.Assignment) (map[uint]grading.PenaltySummary, error) {
	tracer := otel.Tracer("github.com/Suvodeep90/expertiza-E1792/internal/service/penalty")
	ctx, span := tracer.Start(ctx, "penalties.calculate")
	span.SetAttributes(attribute.Int64("assignment.id", int64(assignment.ID)))
	defer span.End()

	participants, err := s.participants.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_participants_failed")
		return nil, storeError("list participants", err)
	}

	var policy models.LatePolicy
	hasPolicy := false
	if assignment.LatePolicyID != nil {
		policy, err = s.penalties.GetLatePolicy(ctx, *assignment.LatePolicyID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "late_policy_failed")
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: late policy %d of assignment %d does not exist", grading.ErrConfiguration, *assignment.LatePolicyID, assignment.ID)
			}
			return nil, storeError("load late policy", err)
		}
		hasPolicy = true
	}

	summaries := make(map[uint]grading.PenaltySummary, len(participants))
	charged := make([]uint, 0)
	for _, participant := range participants {
		var set grading.PenaltySet
		for _, deadline := range models.PenaltyDeadlineTypes {
			points, err := s.policy.ComputePenalty(ctx, assignment, participant, deadline, policy)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "compute_penalty_failed")
				if errors.Is(err, grading.ErrDependency) {
					return nil, err
				}
				return nil, fmt.Errorf("%w: compute %s penalty for participant %d: %w", grading.ErrDependency, deadline, participant.ID, err)
			}
			set.Set(deadline, points)
		}

		summary := grading.PenaltySummary{PenaltySet: set}
		if set.AllTriggered() {
			if !hasPolicy {
				span.SetStatus(codes.Error, "late_policy_missing")
				return nil, fmt.Errorf("%w: assignment %d has no late policy", grading.ErrConfiguration, assignment.ID)
			}
			summary.TotalPenalty = grading.CapPenalty(set.Sum(), policy.MaxPenalty)
			charged = append(charged, participant.ID)
		}
		summaries[participant.ID] = summary
	}

	if assignment.IsPenaltyCalculated {
		return summaries, nil
	}

	rows := 0
	claimed := false
	err = s.penalties.WithinTransaction(ctx, func(store repository.PenaltyStore) error {
		ok, err := store.ClaimPenaltyCalculation(ctx, assignment.ID)
		if err != nil || !ok {
			return err
		}
		claimed = true
		for _, participantID := range charged {
			set := summaries[participantID].PenaltySet
			for _, deadline := range models.PenaltyDeadlineTypes {
				row := models.CalculatedPenalty{
					ParticipantID:  participantID,
					DeadlineTypeID: deadline,
					PenaltyPoints:  set.For(deadline),
				}
				if err := store.CreatePenalty(ctx, &row); err != nil {
					return err
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_penalties_failed")
		return nil, storeError("persist penalties", err)
	}

	span.SetAttributes(
		attribute.Bool("penalties.claimed", claimed),
		attribute.Int("penalties.rows", rows),
	)
	if !claimed {
		s.logger.Debug().Uint("assignment_id", assignment.ID).Msg("penalties already calculated by a concurrent request")
		return summaries, nil
	}

	observability.PenaltyRowsCreated().Add(float64(rows))
	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int("participants", len(participants)).
		Int("penalized", len(charged)).
		Int("rows", rows).
		Msg("penalties calculated")

	s.publish(PenaltiesCalculatedEvent{
		AssignmentID: assignment.ID,
		Participants: len(participants),
		Penalized:    len(charged),
		RowsCreated:  rows,
		CalculatedAt: s.now().UTC(),
	})

	return summaries, nil
}

func (s *penaltyService) publish(event PenaltiesCalculatedEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode penalties event")
		return
	}
	if err := s.publisher.Publish(PenaltiesCalculatedSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", event.AssignmentID).Msg("failed to publish penalties event")
	}
}
