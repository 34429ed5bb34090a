package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Suvodeep90/expertiza-E1792/internal/grading"
	"github.com/Suvodeep90/expertiza-E1792/internal/models"
	"github.com/Suvodeep90/expertiza-E1792/internal/repository"
)

// PenaltyPolicy computes the late points a participant accrued for one deadline type.
type PenaltyPolicy interface {
	ComputePenalty(ctx context.Context, assignment models.Assignment, participant models.Participant, deadline models.DeadlineType, policy models.LatePolicy) (float64, error)
}

// DeadlinePenaltyPolicy charges PenaltyPerUnit for every started unit of
// lateness past the final due date of the deadline type. Work that was never
// done counts as late up to now.
type DeadlinePenaltyPolicy struct {
	assignments repository.AssignmentRepository
	responses   repository.ResponseRepository
	now         func() time.Time
}

// NewDeadlinePenaltyPolicy constructs the due-date based policy engine.
func NewDeadlinePenaltyPolicy(assignments repository.AssignmentRepository, responses repository.ResponseRepository) *DeadlinePenaltyPolicy {
	return &DeadlinePenaltyPolicy{
		assignments: assignments,
		responses:   responses,
		now:         time.Now,
	}
}

func (p *DeadlinePenaltyPolicy) ComputePenalty(ctx context.Context, assignment models.Assignment, participant models.Participant, deadline models.DeadlineType, policy models.LatePolicy) (float64, error) {
	dueDates, err := p.assignments.ListDueDates(ctx, assignment.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: list due dates: %w", grading.ErrDependency, err)
	}

	due, ok := finalDueDate(dueDates, deadline)
	if !ok {
		return 0, nil
	}

	var finishedAt *time.Time
	switch deadline {
	case models.DeadlineSubmission:
		finishedAt = participant.SubmittedAt
	case models.DeadlineReview:
		finishedAt, err = p.responses.LatestAuthoredAt(ctx, participant.ID, models.ResponseMapReview)
	case models.DeadlineMetareview:
		finishedAt, err = p.responses.LatestAuthoredAt(ctx, participant.ID, models.ResponseMapMetareview)
	default:
		return 0, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: latest %s activity: %w", grading.ErrDependency, deadline, err)
	}

	at := p.now()
	if finishedAt != nil {
		at = *finishedAt
	}

	return grading.LatePoints(due, at, policy), nil
}

func finalDueDate(dueDates []models.DueDate, deadline models.DeadlineType) (time.Time, bool) {
	var due time.Time
	found := false
	for _, candidate := range dueDates {
		if candidate.DeadlineTypeID != deadline {
			continue
		}
		if !found || candidate.DueAt.After(due) {
			due = candidate.DueAt
			found = true
		}
	}
	return due, found
}
